package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"apas/internal/app/server"
	"apas/internal/platform/config"
	"apas/internal/platform/db"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, payload any) (int, envelope) {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, url, err)
	}
	return resp.StatusCode, env
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	status, env := doJSON(t, client, http.MethodPost, baseURL+"/login", "", map[string]any{
		"email": email, "password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", email, status)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login %s: no token in response", email)
	}
	return data.Token
}

func signup(t *testing.T, client *http.Client, baseURL, name, email, password string, roleID int64) int64 {
	t.Helper()
	status, env := doJSON(t, client, http.MethodPost, baseURL+"/signup", "", map[string]any{
		"employeeName": name,
		"email":        email,
		"password":     password,
		"roleId":       roleID,
		"departmentId": 1,
	})
	if status != http.StatusCreated {
		t.Fatalf("signup %s: expected 201, got %d", email, status)
	}
	var data struct {
		EmployeeID int64 `json:"employeeId"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.EmployeeID == 0 {
		t.Fatalf("signup %s: no employee id in response", email)
	}
	return data.EmployeeID
}

func TestAppraisalJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		Environment:        "test",
		MigrationsDir:      "../../../../migrations",
		SeedAdminName:      "HR Admin",
		SeedAdminEmail:     "hr@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	app := server.New(cfg, pool)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	hrToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	stamp := time.Now().UnixNano()
	managerID := signup(t, client, ts.URL, "Journey Manager", fmt.Sprintf("mgr-%d@example.com", stamp), "Secret123!", 3)
	employeeID := signup(t, client, ts.URL, "Journey Employee", fmt.Sprintf("emp-%d@example.com", stamp), "Secret123!", 4)
	peerID := signup(t, client, ts.URL, "Journey Peer", fmt.Sprintf("peer-%d@example.com", stamp), "Secret123!", 4)

	managerToken := login(t, client, ts.URL, fmt.Sprintf("mgr-%d@example.com", stamp), "Secret123!")
	employeeToken := login(t, client, ts.URL, fmt.Sprintf("emp-%d@example.com", stamp), "Secret123!")
	peerToken := login(t, client, ts.URL, fmt.Sprintf("peer-%d@example.com", stamp), "Secret123!")

	// Both employees pick the journey manager.
	for _, token := range []string{employeeToken, peerToken} {
		status, _ := doJSON(t, client, http.MethodPut, ts.URL+"/api/employee/update-manager", token, map[string]any{"managerId": managerID})
		if status != http.StatusOK {
			t.Fatalf("update-manager: expected 200, got %d", status)
		}
	}

	// HR opens a new cycle and activates it.
	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/hr/cycles", hrToken, map[string]any{
		"cycleName": fmt.Sprintf("Journey Cycle %d", stamp),
		"startDate": "2026-01-01",
		"endDate":   "2026-12-31",
	})
	if status != http.StatusCreated {
		t.Fatalf("create cycle: expected 201, got %d", status)
	}
	var cycleData struct {
		CycleID int64 `json:"cycleId"`
	}
	if err := json.Unmarshal(env.Data, &cycleData); err != nil || cycleData.CycleID == 0 {
		t.Fatal("create cycle: no cycle id in response")
	}

	status, _ = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/api/hr/cycles/%d/status", ts.URL, cycleData.CycleID), hrToken, map[string]any{"status": "active"})
	if status != http.StatusOK {
		t.Fatalf("activate cycle: expected 200, got %d", status)
	}

	// A manager route must reject an employee token.
	status, _ = doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/manager/team-overview/%d", ts.URL, managerID), employeeToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("manager route with employee token: expected 403, got %d", status)
	}

	// The employee files two goals filling 70% of the budget.
	goalIDs := make([]int64, 0, 2)
	for _, weightage := range []float64{40, 30} {
		status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/employee/goal", employeeToken, map[string]any{
			"title":       fmt.Sprintf("Journey goal %.0f", weightage),
			"description": "deliver the thing",
			"weightage":   weightage,
		})
		if status != http.StatusCreated {
			t.Fatalf("create goal: expected 201, got %d", status)
		}
		var goalData struct {
			GoalID int64 `json:"goalId"`
		}
		if err := json.Unmarshal(env.Data, &goalData); err != nil || goalData.GoalID == 0 {
			t.Fatal("create goal: no goal id in response")
		}
		goalIDs = append(goalIDs, goalData.GoalID)
	}

	// A 40% goal would push the total to 110.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/employee/goal", employeeToken, map[string]any{
		"title": "Over budget", "weightage": 40.0,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("over-budget goal: expected 400, got %d", status)
	}
	if env.Error == nil || !strings.Contains(env.Error.Message, "30.00") {
		t.Fatalf("over-budget goal: expected remaining budget 30.00 in message, got %+v", env.Error)
	}

	// A 30% goal lands exactly on 100.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/employee/goal", employeeToken, map[string]any{
		"title": "Exact fit", "weightage": 30.0,
	})
	if status != http.StatusCreated {
		t.Fatalf("exact-fit goal: expected 201, got %d", status)
	}
	var lastGoal struct {
		GoalID int64 `json:"goalId"`
	}
	if err := json.Unmarshal(env.Data, &lastGoal); err != nil {
		t.Fatal("exact-fit goal: no goal id in response")
	}
	goalIDs = append(goalIDs, lastGoal.GoalID)

	// Manager approves everything.
	for _, goalID := range goalIDs {
		status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/manager/approve-goal", managerToken, map[string]any{
			"goalId": goalID, "feedback": "well scoped",
		})
		if status != http.StatusOK {
			t.Fatalf("approve goal %d: expected 200, got %d", goalID, status)
		}
	}

	// Editing an approved goal is no longer allowed.
	status, _ = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/api/employee/goal/%d", ts.URL, goalIDs[0]), employeeToken, map[string]any{
		"title": "Rewrite", "weightage": 40.0,
	})
	if status != http.StatusForbidden {
		t.Fatalf("edit approved goal: expected 403, got %d", status)
	}

	// Self-appraisals move each goal to in_progress; a repeat is rejected.
	for _, goalID := range goalIDs {
		status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/employee/self-appraisal", employeeToken, map[string]any{
			"goalId": goalID, "comments": "delivered on time",
		})
		if status != http.StatusOK {
			t.Fatalf("self-appraisal goal %d: expected 200, got %d", goalID, status)
		}
	}
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/employee/self-appraisal", employeeToken, map[string]any{
		"goalId": goalIDs[0], "comments": "again",
	})
	if status != http.StatusForbidden {
		t.Fatalf("second self-appraisal: expected 403, got %d", status)
	}

	// Manager rates every goal, completing them.
	for _, goalID := range goalIDs {
		status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/manager/submit-review", managerToken, map[string]any{
			"goalId": goalID, "rating": 4, "comments": "solid",
		})
		if status != http.StatusOK {
			t.Fatalf("submit review goal %d: expected 200, got %d", goalID, status)
		}
	}

	status, env = doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/employee/appraisal-progress/%d", ts.URL, employeeID), employeeToken, nil)
	if status != http.StatusOK {
		t.Fatalf("progress: expected 200, got %d", status)
	}
	var progress struct {
		Stage string `json:"stage"`
	}
	if err := json.Unmarshal(env.Data, &progress); err != nil {
		t.Fatal("progress: bad payload")
	}
	if !strings.HasPrefix(progress.Stage, "5.") {
		t.Fatalf("progress before finalization: expected stage 5, got %q", progress.Stage)
	}

	// 360 feedback: self-review is blocked, a peer goes through, a repeat
	// conflicts.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/employee/submit-360-feedback", peerToken, map[string]any{
		"employeeId": peerID, "rating": 5, "comments": "I am great",
	})
	if status != http.StatusForbidden {
		t.Fatalf("self 360 feedback: expected 403, got %d", status)
	}
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/employee/submit-360-feedback", peerToken, map[string]any{
		"employeeId": employeeID, "rating": 5, "comments": "great teammate",
	})
	if status != http.StatusCreated {
		t.Fatalf("peer 360 feedback: expected 201, got %d", status)
	}
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/employee/submit-360-feedback", peerToken, map[string]any{
		"employeeId": employeeID, "rating": 3, "comments": "second thoughts",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate 360 feedback: expected 409, got %d", status)
	}

	// HR finalizes the cycle.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/hr/calculate-ratings", hrToken, map[string]any{"cycleId": cycleData.CycleID})
	if status != http.StatusOK {
		t.Fatalf("calculate ratings: expected 200, got %d", status)
	}
	var calc struct {
		RatedEmployees int64 `json:"ratedEmployees"`
	}
	if err := json.Unmarshal(env.Data, &calc); err != nil || calc.RatedEmployees == 0 {
		t.Fatalf("calculate ratings: expected at least one rated employee, got %s", env.Data)
	}

	status, env = doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/hr/final-ratings/%d", ts.URL, cycleData.CycleID), hrToken, nil)
	if status != http.StatusOK {
		t.Fatalf("final ratings list: expected 200, got %d", status)
	}
	var finals []struct {
		EmployeeID    int64   `json:"employeeId"`
		WeightedScore float64 `json:"weightedScore"`
		Rank          int     `json:"rank"`
	}
	if err := json.Unmarshal(env.Data, &finals); err != nil || len(finals) == 0 {
		t.Fatal("final ratings list: expected at least one entry")
	}
	// All three goals completed at rating 4 with weightages 40/30/30: the
	// weighted score is exactly 4.
	found := false
	for _, fr := range finals {
		if fr.EmployeeID == employeeID {
			found = true
			if fr.WeightedScore != 4 {
				t.Fatalf("expected weighted score 4, got %v", fr.WeightedScore)
			}
		}
	}
	if !found {
		t.Fatal("final ratings list: journey employee missing")
	}

	// The employee can now pull the full report.
	status, env = doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/employee/final-report/%d", ts.URL, employeeID), employeeToken, nil)
	if status != http.StatusOK {
		t.Fatalf("final report: expected 200, got %d", status)
	}
	var report struct {
		Summary struct {
			EmployeeID int64 `json:"employeeId"`
		} `json:"summary"`
		Goals    []json.RawMessage `json:"goals"`
		Feedback []json.RawMessage `json:"feedback"`
	}
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatal("final report: bad payload")
	}
	if report.Summary.EmployeeID != employeeID || len(report.Goals) != 3 || len(report.Feedback) != 1 {
		t.Fatalf("final report: unexpected shape: %s", env.Data)
	}

	status, env = doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/employee/appraisal-progress/%d", ts.URL, employeeID), employeeToken, nil)
	if status != http.StatusOK {
		t.Fatalf("progress after finalization: expected 200, got %d", status)
	}
	if err := json.Unmarshal(env.Data, &progress); err != nil {
		t.Fatal("progress after finalization: bad payload")
	}
	if !strings.HasPrefix(progress.Stage, "6.") {
		t.Fatalf("progress after finalization: expected stage 6, got %q", progress.Stage)
	}
}
