// Package report renders a user's projects as a printable PDF.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/jung-kurt/gofpdf"
)

const (
	margin     = 15.0
	lineHeight = 6.0
)

// WriteProjectsPDF writes an A4 listing of projects owned by user to w.
// generatedAt is printed in the header and used as the creation date.
func WriteProjectsPDF(w io.Writer, user *models.User, projects []models.Project, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetTitle(tr(fmt.Sprintf("Projects of %s", displayName(user))), false)
	pdf.SetAuthor("projdash", false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(displayName(user)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range headerLines(user) {
		pdf.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("Generated %s, %d project(s)", generatedAt.UTC().Format(time.RFC3339), len(projects)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(projects) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, lineHeight, "No projects yet.", "", 1, "L", false, 0, "")
	}

	for i, p := range projects {
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(margin, pdf.GetY(), 210-margin, pdf.GetY())
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, orDash(p.Name))), "", "L", false)

		pdf.SetFont("Helvetica", "", 10)
		category := orDash(p.Category)
		if p.SubCategory != "" {
			category += " / " + p.SubCategory
		}
		pdf.MultiCell(0, lineHeight, tr("Category: "+category), "", "L", false)
		if p.Description != "" {
			pdf.MultiCell(0, lineHeight, tr(p.Description), "", "L", false)
		}
		if p.Link != "" {
			pdf.MultiCell(0, lineHeight, tr("Link: "+p.Link), "", "L", false)
		}
		if p.RepoLink != "" {
			pdf.MultiCell(0, lineHeight, tr("Repository: "+p.RepoLink), "", "L", false)
		}
		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func displayName(u *models.User) string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return u.Login
}

func headerLines(u *models.User) []string {
	var lines []string
	if u.Affiliation != "" {
		lines = append(lines, "Affiliation: "+u.Affiliation)
	}
	if u.Mode == models.ModeTeam && u.TeamID != "" {
		lines = append(lines, "Team: "+u.TeamID)
	} else if u.Mode != "" {
		lines = append(lines, "Mode: "+u.Mode)
	}
	return lines
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
