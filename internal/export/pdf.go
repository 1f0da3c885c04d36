/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"mininotion/internal/domain"
)

// PDFOptions controls PDF export behavior.
// Units are points (pt). Built-in Helvetica keeps text vector without
// embedding; UTF-8 text is translated to the core font code page, so
// characters outside cp1252 degrade.
type PDFOptions struct {
	// Title is the document title; defaults to "Mini Notion".
	Title string
	// PageSize is "A4" (default), "Letter" or "Legal".
	PageSize string
	// FontSize of body text in points; defaults to 11.
	FontSize float64
	// Pages restricts the export to these display positions; empty exports all.
	Pages []int
	// PageNumbers adds a centered footer with the PDF page number.
	PageNumbers bool
}

// ErrNothingToExport is returned when no page is selected for export.
var ErrNothingToExport = errors.New("nothing to export")

// WritePDF renders each workspace page as a titled section starting on a new PDF page.
func WritePDF(w io.Writer, pages []domain.Page, opt PDFOptions) error {
	selected := selectPages(pages, opt.Pages)
	if len(selected) == 0 {
		return ErrNothingToExport
	}
	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Mini Notion"
	}
	size := opt.PageSize
	if size == "" {
		size = "A4"
	}
	fontSize := opt.FontSize
	if fontSize <= 0 {
		fontSize = 11
	}

	pdf := gofpdf.New("P", "pt", size, "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("mininotion", false)
	pdf.SetMargins(56, 56, 56)
	pdf.SetAutoPageBreak(true, 56)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opt.PageNumbers {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-40)
			pdf.SetFont("Helvetica", "", 9)
			pdf.CellFormat(0, 10, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
		})
	}

	lineH := fontSize * 1.4
	for _, p := range selected {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", fontSize*1.6)
		pdf.MultiCell(0, fontSize*2, tr(p.Title), "", "L", false)
		pdf.SetDrawColor(156, 163, 175)
		pdf.SetLineWidth(0.5)
		x, y := pdf.GetXY()
		pageW, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		pdf.Line(x, y+2, pageW-right, y+2)
		pdf.SetX(left)
		pdf.Ln(fontSize)

		pdf.SetFont("Helvetica", "", fontSize)
		body := strings.ReplaceAll(p.Content, "\r\n", "\n")
		if strings.TrimSpace(body) == "" {
			pdf.SetTextColor(107, 114, 128)
			pdf.SetFont("Helvetica", "I", fontSize)
			pdf.MultiCell(0, lineH, "(empty page)", "", "L", false)
			pdf.SetTextColor(0, 0, 0)
			continue
		}
		pdf.MultiCell(0, lineH, tr(body), "", "L", false)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportPDF writes the PDF to outPath, creating parent directories as needed.
func ExportPDF(outPath string, pages []domain.Page, opt PDFOptions) error {
	if strings.TrimSpace(outPath) == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WritePDF(f, pages, opt); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return err
	}
	return f.Close()
}

func selectPages(pages []domain.Page, positions []int) []domain.Page {
	if len(positions) == 0 {
		return pages
	}
	out := make([]domain.Page, 0, len(positions))
	for _, i := range positions {
		if i < 0 || i >= len(pages) {
			continue
		}
		out = append(out, pages[i])
	}
	return out
}
