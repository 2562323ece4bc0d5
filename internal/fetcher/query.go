package fetcher

import (
	"net/url"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Query holds the search parameters accepted by the county's Results.aspx
// endpoint. Zero values fall through to the endpoint's own defaults.
type Query struct {
	BusinessName       string `yaml:"business_name"`
	BusinessAddress    string `yaml:"business_address"`
	City               string `yaml:"city"`
	ZipCode            string `yaml:"zip_code"`
	Longitude          string `yaml:"longitude"`
	Latitude           string `yaml:"latitude"`
	InspectionType     string `yaml:"inspection_type"`
	InspectionStart    string `yaml:"inspection_start"`
	InspectionEnd      string `yaml:"inspection_end"`
	ClosedBusiness     string `yaml:"closed_business"`
	ViolationPoints    string `yaml:"violation_points"`
	ViolationRedPoints string `yaml:"violation_red_points"`
	ViolationDescr     string `yaml:"violation_descr"`
	FuzzySearch        bool   `yaml:"fuzzy_search"`
	Sort               string `yaml:"sort"`
}

// Values renders the query as Results.aspx request parameters. Output=W
// selects the full web listing the extractor understands.
func (q Query) Values() url.Values {
	inspectionType := q.InspectionType
	if inspectionType == "" {
		inspectionType = "All"
	}
	closed := q.ClosedBusiness
	if closed == "" {
		closed = "A"
	}
	sort := q.Sort
	if sort == "" {
		sort = "H"
	}
	fuzzy := "N"
	if q.FuzzySearch {
		fuzzy = "Y"
	}

	return url.Values{
		"Output":                     {"W"},
		"Business_Name":              {q.BusinessName},
		"Business_Address":           {q.BusinessAddress},
		"Longitude":                  {q.Longitude},
		"Latitude":                   {q.Latitude},
		"City":                       {q.City},
		"Zip_Code":                   {q.ZipCode},
		"Inspection_Type":            {inspectionType},
		"Inspection_Start":           {q.InspectionStart},
		"Inspection_End":             {q.InspectionEnd},
		"Inspection_Closed_Business": {closed},
		"Violation_Points":           {q.ViolationPoints},
		"Violation_Red_Points":       {q.ViolationRedPoints},
		"Violation_Descr":            {q.ViolationDescr},
		"Fuzzy_Search":               {fuzzy},
		"Sort":                       {sort},
	}
}

// LoadQueryFile reads a Query from a YAML file.
func LoadQueryFile(path string) (Query, error) {
	var q Query
	data, err := os.ReadFile(path)
	if err != nil {
		return q, eris.Wrap(err, "fetcher: read query file")
	}
	if err := yaml.Unmarshal(data, &q); err != nil {
		return q, eris.Wrap(err, "fetcher: parse query file")
	}
	return q, nil
}
