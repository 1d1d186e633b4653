package extraction

import (
	"regexp"
	"strings"

	"github.com/m3rciful/insurancebot/internal/domain"
)

var (
	vinPattern  = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`)
	yearPattern = regexp.MustCompile(`\b(19[5-9]\d|20\d\d)\b`)
)

// fieldAliases maps normalized labels and entity types to a canonical field name.
var fieldAliases = map[string]string{
	"given_names":         "given_names",
	"given_name":          "given_names",
	"first_name":          "given_names",
	"name":                "given_names",
	"surname":             "surname",
	"family_name":         "surname",
	"last_name":           "surname",
	"document_id":         "document_id",
	"document_number":     "document_id",
	"document_no":         "document_id",
	"passport_number":     "document_id",
	"passport_no":         "document_id",
	"id_number":           "document_id",
	"date_of_birth":       "date_of_birth",
	"dob":                 "date_of_birth",
	"birth_date":          "date_of_birth",
	"nationality":         "nationality",
	"address":             "address",
	"make":                "make",
	"manufacturer":        "make",
	"model":               "model",
	"vin":                 "vin",
	"vehicle_id":          "vin",
	"chassis_number":      "vin",
	"year":                "year",
	"model_year":          "year",
	"year_of_manufacture": "year",
	"registration":        "registration",
	"registration_number": "registration",
	"plate":               "registration",
	"plate_number":        "registration",
	"license_plate":       "registration",
}

// normalizeKey lowercases a label and joins its words with underscores.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ", ".", " ", "/", " ").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}

// labelledFields collects "Label: value" lines, and labels alone on a line followed by their value.
func labelledFields(text string) map[string]string {
	out := make(map[string]string)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		label, value, hasColon := strings.Cut(line, ":")
		field, ok := fieldAliases[normalizeKey(label)]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" && !hasColon && i+1 < len(lines) {
			value = strings.TrimSpace(lines[i+1])
		}
		if _, known := fieldAliases[normalizeKey(value)]; known {
			continue
		}
		if _, dup := out[field]; !dup && value != "" {
			out[field] = value
		}
	}
	return out
}

// Project turns a recognition into the tagged document variant for kind. Entities win over
// labelled text; fields that cannot be found stay empty.
func Project(kind domain.DocumentKind, rec Recognition) domain.Document {
	fields := labelledFields(rec.Text)
	for key, val := range rec.Entities {
		if field, ok := fieldAliases[normalizeKey(key)]; ok {
			fields[field] = val
		}
	}

	doc := domain.Document{Kind: kind, FullText: strings.TrimSpace(rec.Text)}
	switch kind {
	case domain.Passport:
		doc.Passport = &domain.PassportFields{
			GivenNames:  fields["given_names"],
			Surname:     fields["surname"],
			DocumentID:  fields["document_id"],
			DateOfBirth: fields["date_of_birth"],
			Nationality: fields["nationality"],
			Address:     fields["address"],
		}
	case domain.Vehicle:
		v := &domain.VehicleFields{
			Make:         fields["make"],
			Model:        fields["model"],
			VIN:          strings.ToUpper(fields["vin"]),
			Year:         fields["year"],
			Registration: fields["registration"],
		}
		upper := strings.ToUpper(rec.Text)
		if v.VIN == "" {
			v.VIN = vinPattern.FindString(upper)
		}
		if m := yearPattern.FindString(v.Year); m != "" {
			v.Year = m
		} else {
			v.Year = yearPattern.FindString(rec.Text)
		}
		doc.Vehicle = v
	}
	return doc
}
