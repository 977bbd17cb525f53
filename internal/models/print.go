package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PrintStatus string

const (
	PrintPending PrintStatus = "pending"
	PrintDone    PrintStatus = "done"
	// PrintRejected is a valid stored value with no queue action wired to it
	// yet; it is kept so old rows and future admin tooling stay readable.
	PrintRejected PrintStatus = "rejected"
)

type PaperSize string

const (
	PaperA4 PaperSize = "a4"
	PaperA3 PaperSize = "a3"
)

type ColorMode string

const (
	ColorBW    ColorMode = "bw"
	ColorFull  ColorMode = "color"
	ColorMixed ColorMode = "mixed"
)

type BindingType string

const (
	BindingNone   BindingType = "none"
	BindingSpiral BindingType = "spiral"
	BindingGlass  BindingType = "glass"
)

// FileSpec is one entry of the per-file print configuration persisted in the
// file_details JSON column. Field names match the stored document.
type FileSpec struct {
	FileName        string      `json:"fileName"`
	URL             string      `json:"url"`
	Size            PaperSize   `json:"size"`
	ColorMode       ColorMode   `json:"colorMode"`
	MixedColorPages string      `json:"mixedColorPages"`
	MixedBwPages    string      `json:"mixedBwPages"`
	Sides           string      `json:"sides"`
	Pages           int         `json:"pages"`
	Copies          int         `json:"copies"`
	Binding         BindingType `json:"binding"`
}

type PrintOrder struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	StudentID     uuid.UUID      `db:"student_id" json:"student_id"`
	FileDetails   []FileSpec     `db:"file_details" json:"file_details"`
	FileName      string         `db:"file_name" json:"file_name"`
	FileURL       string         `db:"file_url" json:"file_url"`
	PageCounts    map[string]int `db:"page_counts" json:"page_counts"`
	Copies        int            `db:"copies" json:"copies"`
	Status        PrintStatus    `db:"status" json:"status"`
	EstimatedCost float64        `db:"estimated_cost" json:"estimated_cost"`
	Note          string         `db:"note" json:"note"`
	ColorMode     ColorMode      `db:"color_mode" json:"color_mode"`
	BindingType   BindingType    `db:"binding_type" json:"binding_type"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`

	Student *ProfileRef `db:"-" json:"profiles,omitempty"`
}

// PriceTable holds per-page rates and binding surcharges. The bw/color/coil/
// glass columns come from the print_config row; A3 rates are fixed.
type PriceTable struct {
	A4BW    float64
	A4Color float64
	A3BW    float64
	A3Color float64
	Binding map[BindingType]float64
	IsOpen  bool
}

func DefaultPriceTable() PriceTable {
	return PriceTable{
		A4BW:    2,
		A4Color: 10,
		A3BW:    5,
		A3Color: 20,
		Binding: map[BindingType]float64{
			BindingNone:   0,
			BindingSpiral: 30,
			BindingGlass:  50,
		},
		IsOpen: true,
	}
}

func (p PriceTable) rates(size PaperSize) (bw, color float64) {
	if size == PaperA3 {
		return p.A3BW, p.A3Color
	}
	return p.A4BW, p.A4Color
}

// ParsePageCount counts pages in a "1-5, 8" style range string. Segments are
// inclusive and order-independent ("5-1" counts 5); anything unparseable
// contributes zero.
func ParsePageCount(rangeStr string) int {
	if rangeStr == "" {
		return 0
	}
	total := 0
	for _, part := range strings.Split(rangeStr, ",") {
		bounds := strings.Split(part, "-")
		switch len(bounds) {
		case 1:
			if _, err := strconv.Atoi(strings.TrimSpace(bounds[0])); err == nil {
				total++
			}
		case 2:
			lo, err1 := strconv.Atoi(strings.TrimSpace(bounds[0]))
			hi, err2 := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err1 == nil && err2 == nil {
				if hi < lo {
					lo, hi = hi, lo
				}
				total += hi - lo + 1
			}
		}
	}
	return total
}

// FileCost prices a single file. A mixed file with no color and no b/w pages
// specified is a validation error caught before any upload happens.
func (p PriceTable) FileCost(f FileSpec) (float64, error) {
	copies := f.Copies
	if copies < 1 {
		copies = 1
	}
	bwRate, colorRate := p.rates(f.Size)

	var cost float64
	switch f.ColorMode {
	case ColorMixed:
		colorPages := ParsePageCount(f.MixedColorPages)
		bwPages := ParsePageCount(f.MixedBwPages)
		if colorPages+bwPages == 0 {
			return 0, fmt.Errorf("enter the page numbers for the mixed file %s", f.FileName)
		}
		cost = (float64(colorPages)*colorRate + float64(bwPages)*bwRate) * float64(copies)
	case ColorFull:
		cost = float64(f.Pages) * colorRate * float64(copies)
	default:
		cost = float64(f.Pages) * bwRate * float64(copies)
	}

	cost += p.Binding[f.Binding]
	return cost, nil
}

// OrderCost totals the whole submission; it must run to completion before any
// payment is requested or file uploaded.
func (p PriceTable) OrderCost(files []FileSpec) (float64, error) {
	var total float64
	for _, f := range files {
		cost, err := p.FileCost(f)
		if err != nil {
			return 0, err
		}
		total += cost
	}
	return total, nil
}

// PaymentNote is the structured form of the print order note field:
//
//	[UTR: <ref>] Note: <freeText>
type PaymentNote struct {
	Reference string
	FreeText  string
}

func (n PaymentNote) Encode() string {
	return fmt.Sprintf("[UTR: %s] Note: %s", n.Reference, n.FreeText)
}

func ParsePaymentNote(raw string) (PaymentNote, error) {
	var n PaymentNote
	rest, ok := strings.CutPrefix(raw, "[UTR: ")
	if !ok {
		return n, fmt.Errorf("missing UTR segment: %q", raw)
	}
	ref, rest, ok := strings.Cut(rest, "]")
	if !ok {
		return n, fmt.Errorf("unterminated UTR segment: %q", raw)
	}
	n.Reference = ref
	n.FreeText = strings.TrimPrefix(strings.TrimSpace(rest), "Note: ")
	return n, nil
}
