package sheets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// API is the spreadsheet surface the services depend on. Errors from the
// remote service are surfaced verbatim; callers decide retry policy.
type API interface {
	// TabNames lists the titles of all tabs in the spreadsheet.
	TabNames(ctx context.Context, spreadsheetID string) ([]string, error)
	// Values reads a range as a plain text grid.
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
	// GridCells reads a range with full cell metadata (hyperlinks,
	// rich-text link runs, formulas).
	GridCells(ctx context.Context, spreadsheetID, readRange string) ([][]Cell, error)
	// UpdateCell writes a single user-entered value (formulas are
	// interpreted) into the given cell range.
	UpdateCell(ctx context.Context, spreadsheetID, cellRange string, value interface{}) error
}

// Client implements API against the Google Sheets v4 service.
type Client struct {
	svc *sheetsapi.Service
}

// NewClient builds the Sheets client from a base64-encoded service
// account key. A missing key is a construction-time failure.
func NewClient(ctx context.Context, serviceAccountKeyBase64 string) (*Client, error) {
	if serviceAccountKeyBase64 == "" {
		return nil, errors.New("sheets: service account key is not configured")
	}
	keyJSON, err := base64.StdEncoding.DecodeString(serviceAccountKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("sheets: decoding service account key: %w", err)
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsJSON(keyJSON),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: constructing service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func (c *Client) TabNames(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			names = append(names, s.Properties.Title)
		}
	}
	return names, nil
}

func (c *Client) Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

func (c *Client) GridCells(ctx context.Context, spreadsheetID, readRange string) ([][]Cell, error) {
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Ranges(readRange).
		IncludeGridData(true).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Sheets) == 0 || len(resp.Sheets[0].Data) == 0 {
		return nil, nil
	}

	data := resp.Sheets[0].Data[0]
	rows := make([][]Cell, len(data.RowData))
	for i, rd := range data.RowData {
		cells := make([]Cell, len(rd.Values))
		for j, cd := range rd.Values {
			cells[j] = fromCellData(cd)
		}
		rows[i] = cells
	}
	return rows, nil
}

func (c *Client) UpdateCell(ctx context.Context, spreadsheetID, cellRange string, value interface{}) error {
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{{value}}}
	_, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, cellRange, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	return err
}

// fromCellData collapses the loosely-typed API cell into the tagged Cell
// variant.
func fromCellData(cd *sheetsapi.CellData) Cell {
	if cd == nil {
		return Cell{}
	}

	cell := Cell{
		Kind:      KindPlain,
		Value:     cd.FormattedValue,
		Hyperlink: cd.Hyperlink,
	}

	if ev := cd.UserEnteredValue; ev != nil {
		switch {
		case ev.FormulaValue != nil:
			cell.Kind = KindFormula
			cell.Formula = *ev.FormulaValue
		case ev.StringValue != nil:
			// Prefer the entered value over the display-formatted one.
			cell.Value = *ev.StringValue
		}
	}

	if len(cd.TextFormatRuns) > 0 {
		cell.Kind = KindRich
		for _, run := range cd.TextFormatRuns {
			tr := TextRun{}
			if run.Format != nil && run.Format.Link != nil {
				tr.LinkURI = run.Format.Link.Uri
			}
			cell.Runs = append(cell.Runs, tr)
		}
	}

	return cell
}
