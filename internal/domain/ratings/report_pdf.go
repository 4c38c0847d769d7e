package ratings

import (
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// ReportPDF renders the employee appraisal report as a PDF and streams it to
// w.
func (s *Service) ReportPDF(ctx context.Context, w io.Writer, employeeID, cycleID int64) error {
	report, err := s.EmployeeReport(ctx, employeeID, cycleID)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Appraisal Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", report.Summary.EmployeeName))
	pdf.Ln(7)
	if report.Summary.DepartmentName != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Department: %s", *report.Summary.DepartmentName))
		pdf.Ln(7)
	}
	if report.Summary.ManagerName != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Manager: %s", *report.Summary.ManagerName))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Cycle: %s", report.Summary.CycleName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Weighted score: %.2f", report.Summary.WeightedScore))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Rank: %d", report.Summary.Rank))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 9, "Goals")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	for _, g := range report.Goals {
		line := fmt.Sprintf("%s (%.0f%%, %s)", g.Title, g.Weightage, g.Status)
		if g.Rating != nil {
			line += fmt.Sprintf(" - rating %d/5", *g.Rating)
		}
		pdf.MultiCell(0, 6, line, "", "", false)
		if g.ManagerFeedback != nil && *g.ManagerFeedback != "" {
			pdf.MultiCell(0, 6, fmt.Sprintf("  Manager: %s", *g.ManagerFeedback), "", "", false)
		}
		pdf.Ln(2)
	}
	pdf.Ln(4)

	if len(report.SelfAppraisals) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 9, "Self-Appraisals")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		for _, sa := range report.SelfAppraisals {
			pdf.MultiCell(0, 6, fmt.Sprintf("%s: %s", sa.GoalTitle, sa.Comments), "", "", false)
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}

	if len(report.Feedback) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 9, "360 Feedback")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		for _, f := range report.Feedback {
			pdf.MultiCell(0, 6, fmt.Sprintf("%s (%d/5): %s", f.ReviewerName, f.Rating, f.Comments), "", "", false)
			pdf.Ln(2)
		}
	}

	return pdf.Output(w)
}
