// Package dataset reads and writes restaurant records as CSV, the exchange
// format the enrichment pipeline consumes and produces.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/tastelondon/enrich-cli/internal/model"
)

// Fixed columns, in output order. Attribute columns follow, then the
// directory match-state columns. An empty cell means the value is unknown.
var baseColumns = []string{"place_id", "name", "city", "area", "website", "lat", "lon"}

var attrColumns = []string{
	model.AttrPhone,
	model.AttrEmail,
	model.AttrOpeningHours,
	model.AttrCuisineType,
	model.AttrPriceRange,
	model.AttrInstagram,
	model.AttrFacebook,
	model.AttrMenuURL,
	model.AttrCoverImage,
}

var matchColumns = []string{
	"directory_url",
	"directory_status",
	"directory_confidence",
	"directory_distance_m",
	"directory_match_notes",
	"tertiary_updates",
}

// Header returns the full CSV header row.
func Header() []string {
	header := make([]string, 0, len(baseColumns)+len(attrColumns)+len(matchColumns))
	header = append(header, baseColumns...)
	header = append(header, attrColumns...)
	header = append(header, matchColumns...)
	return header
}

// Read parses restaurant records from CSV. The header row drives column
// lookup, so column order and unknown extra columns are tolerated. Records
// must carry place_id and name; lat/lon must come as a pair.
func Read(r io.Reader) ([]model.Restaurant, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read csv")
	}
	if len(rows) == 0 {
		return nil, eris.New("dataset: csv is empty")
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[name] = i
	}
	if _, ok := idx["place_id"]; !ok {
		return nil, eris.New("dataset: csv has no place_id column")
	}

	var restaurants []model.Restaurant
	for n, row := range rows[1:] {
		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: row %d", n+2)
		}
		restaurants = append(restaurants, rec)
	}
	return restaurants, nil
}

func parseRow(row []string, idx map[string]int) (model.Restaurant, error) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rec := model.Restaurant{
		PlaceID: cell("place_id"),
		Name:    cell("name"),
		City:    cell("city"),
		Area:    cell("area"),
		Website: cell("website"),
	}
	if rec.PlaceID == "" {
		return model.Restaurant{}, eris.New("place_id is empty")
	}
	if rec.Name == "" {
		return model.Restaurant{}, eris.New("name is empty")
	}

	latStr, lonStr := cell("lat"), cell("lon")
	switch {
	case latStr == "" && lonStr == "":
		// position unknown
	case latStr == "" || lonStr == "":
		return model.Restaurant{}, eris.New("lat and lon must be set together")
	default:
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return model.Restaurant{}, eris.Wrap(err, "parse lat")
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return model.Restaurant{}, eris.Wrap(err, "parse lon")
		}
		rec.Coords = &model.Coordinates{Lat: lat, Lon: lon}
	}

	for _, attr := range attrColumns {
		if v := cell(attr); v != "" {
			rec.SetAttr(attr, v)
		}
	}

	if v := cell("directory_url"); v != "" {
		rec.DirectoryURL = &v
	}
	rec.DirectoryStatus = model.DirectoryStatus(cell("directory_status"))
	if v := cell("directory_confidence"); v != "" {
		conf, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.Restaurant{}, eris.Wrap(err, "parse directory_confidence")
		}
		rec.DirectoryConfidence = &conf
	}
	if v := cell("directory_distance_m"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.Restaurant{}, eris.Wrap(err, "parse directory_distance_m")
		}
		rec.DirectoryDistanceM = &d
	}
	rec.DirectoryMatchNotes = cell("directory_match_notes")
	if v := cell("tertiary_updates"); v != "" {
		if err := json.Unmarshal([]byte(v), &rec.TertiaryUpdates); err != nil {
			return model.Restaurant{}, eris.Wrap(err, "parse tertiary_updates")
		}
	}

	return rec, nil
}

// Write emits records with the full header.
func Write(w io.Writer, restaurants []model.Restaurant) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header()); err != nil {
		return eris.Wrap(err, "dataset: write header")
	}

	for _, rec := range restaurants {
		row, err := formatRow(rec)
		if err != nil {
			return eris.Wrapf(err, "dataset: format %s", rec.PlaceID)
		}
		if err := writer.Write(row); err != nil {
			return eris.Wrapf(err, "dataset: write %s", rec.PlaceID)
		}
	}

	writer.Flush()
	return eris.Wrap(writer.Error(), "dataset: flush")
}

func formatRow(rec model.Restaurant) ([]string, error) {
	row := []string{rec.PlaceID, rec.Name, rec.City, rec.Area, rec.Website}

	if rec.Coords != nil {
		row = append(row,
			strconv.FormatFloat(rec.Coords.Lat, 'f', -1, 64),
			strconv.FormatFloat(rec.Coords.Lon, 'f', -1, 64),
		)
	} else {
		row = append(row, "", "")
	}

	for _, attr := range attrColumns {
		v, _ := rec.Attr(attr)
		row = append(row, v)
	}

	if rec.DirectoryURL != nil {
		row = append(row, *rec.DirectoryURL)
	} else {
		row = append(row, "")
	}
	row = append(row, string(rec.DirectoryStatus))
	if rec.DirectoryConfidence != nil {
		row = append(row, strconv.FormatFloat(*rec.DirectoryConfidence, 'f', 2, 64))
	} else {
		row = append(row, "")
	}
	if rec.DirectoryDistanceM != nil {
		row = append(row, strconv.FormatFloat(*rec.DirectoryDistanceM, 'f', 1, 64))
	} else {
		row = append(row, "")
	}
	row = append(row, rec.DirectoryMatchNotes)

	if len(rec.TertiaryUpdates) > 0 {
		updates, err := json.Marshal(rec.TertiaryUpdates)
		if err != nil {
			return nil, eris.Wrap(err, "marshal tertiary_updates")
		}
		row = append(row, string(updates))
	} else {
		row = append(row, "")
	}

	return row, nil
}
