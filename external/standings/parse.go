package standings

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	sonic "github.com/bytedance/sonic"

	"github.com/jamwil123/pool-tracker/internal/domain/standing"
)

// parsePayload accepts the scraper's {division, scrapedAt, source, standings} object, the
// same object wrapped in "data" or "result", or a bare array of rows.
func parsePayload(raw []byte) (standing.Table, error) {
	var decoded any
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return standing.Table{}, err
	}

	var payload map[string]any
	switch v := decoded.(type) {
	case []any:
		payload = map[string]any{"standings": v}
	case map[string]any:
		payload = v
		if _, ok := payload["standings"].([]any); !ok {
			for _, key := range []string{"data", "result"} {
				inner, ok := payload[key].(map[string]any)
				if !ok {
					continue
				}
				if _, ok := inner["standings"].([]any); ok {
					payload = inner
					break
				}
			}
		}
	default:
		return standing.Table{}, fmt.Errorf("unexpected payload type %T", decoded)
	}

	items, _ := payload["standings"].([]any)
	rows := make([]standing.Row, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, parseRow(obj, i))
	}

	return standing.Table{
		Division:  asString(payload["division"]),
		ScrapedAt: asString(payload["scrapedAt"]),
		Source:    asString(payload["source"]),
		Rows:      rows,
	}, nil
}

// parseRow fills missing frames for/against from the raw cells and derives the frame
// difference and position when the scraper left them blank.
func parseRow(obj map[string]any, index int) standing.Row {
	var raw []string
	if cells, ok := obj["raw"].([]any); ok {
		raw = make([]string, 0, len(cells))
		for _, cell := range cells {
			raw = append(raw, asString(cell))
		}
	}
	rawAt := func(i int) string {
		if i < len(raw) {
			return raw[i]
		}
		return ""
	}

	row := standing.Row{
		Team:   asString(obj["team"]),
		Played: asInt(obj["played"]),
		Won:    asInt(obj["won"]),
		Drawn:  asInt(obj["drawn"]),
		Lost:   asInt(obj["lost"]),
		Points: asInt(obj["points"]),
		Raw:    raw,
	}

	row.FramesFor = asInt(obj["gf"])
	if row.FramesFor == 0 {
		row.FramesFor = asInt(rawAt(6))
	}
	row.FramesAgainst = asInt(obj["ga"])
	if row.FramesAgainst == 0 {
		row.FramesAgainst = asInt(rawAt(7))
	}

	if gd := asString(obj["gd"]); gd != "" {
		row.FrameDiff = asInt(gd)
	} else {
		row.FrameDiff = row.FramesFor - row.FramesAgainst
	}

	switch {
	case asString(obj["position"]) != "":
		row.Position = asInt(obj["position"])
	case rawAt(0) != "":
		row.Position = asInt(rawAt(0))
	default:
		row.Position = index + 1
	}
	return row
}

// parseHTMLTable reads the first table on a league page: position, team, played, won, drawn,
// lost, frames for, frames against, an optional difference column, then points.
func parseHTMLTable(body []byte) (standing.Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return standing.Table{}, err
	}

	table := standing.Table{
		Division: strings.TrimSpace(doc.Find("caption, h1, h2").First().Text()),
		Source:   "html",
	}

	doc.Find("table").First().Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := make([]string, 0, 10)
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) < 9 {
			return
		}

		row := standing.Row{
			Position:      asInt(cells[0]),
			Team:          cells[1],
			Played:        asInt(cells[2]),
			Won:           asInt(cells[3]),
			Drawn:         asInt(cells[4]),
			Lost:          asInt(cells[5]),
			FramesFor:     asInt(cells[6]),
			FramesAgainst: asInt(cells[7]),
			Points:        asInt(cells[len(cells)-1]),
			Raw:           cells,
		}
		if len(cells) >= 10 {
			row.FrameDiff = asInt(cells[8])
		} else {
			row.FrameDiff = row.FramesFor - row.FramesAgainst
		}
		if row.Position == 0 {
			row.Position = len(table.Rows) + 1
		}
		table.Rows = append(table.Rows, row)
	})

	if len(table.Rows) == 0 {
		return standing.Table{}, fmt.Errorf("no standings rows found")
	}
	return table, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	}

	text := strings.TrimSpace(asString(v))
	if text == "" {
		return 0
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(text, "+")); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}
