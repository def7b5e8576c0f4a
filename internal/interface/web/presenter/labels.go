package presenter

import "strings"

// Labels are the fixed texts of the table and the filter bar.
type Labels struct {
	Title         string
	Student       string
	SelectSubject string
	Max           string
	Mean          string
	Min           string
	TierHigh      string
	TierMedium    string
	TierLow       string
	Apply         string
	Clear         string
	AddStudent    string
	AddSubject    string
	StudentName   string
	SubjectName   string
	Delete        string
	Refresh       string
}

var labels = map[string]Labels{
	"uz": {
		Title:         "Baholar jurnali",
		Student:       "Talaba",
		SelectSubject: "Fan tanlang",
		Max:           "High",
		Mean:          "Mid",
		Min:           "Low",
		TierHigh:      "75–100",
		TierMedium:    "50–74",
		TierLow:       "0–49",
		Apply:         "Filtrlash",
		Clear:         "Tozalash",
		AddStudent:    "Talaba qo‘shish",
		AddSubject:    "Fan qo‘shish",
		StudentName:   "Talaba ismi",
		SubjectName:   "Fan nomi",
		Delete:        "O‘chirish",
		Refresh:       "Yangilash",
	},
	"en": {
		Title:         "Grade journal",
		Student:       "Student",
		SelectSubject: "Select subject",
		Max:           "Max",
		Mean:          "Mean",
		Min:           "Min",
		TierHigh:      "75–100",
		TierMedium:    "50–74",
		TierLow:       "0–49",
		Apply:         "Apply",
		Clear:         "Clear",
		AddStudent:    "Add student",
		AddSubject:    "Add subject",
		StudentName:   "Student name",
		SubjectName:   "Subject name",
		Delete:        "Delete",
		Refresh:       "Refresh",
	},
}

// LabelsFor returns the labels of locale, falling back to Uzbek.
func LabelsFor(locale string) Labels {
	if l, ok := labels[strings.ToLower(strings.TrimSpace(locale))]; ok {
		return l
	}
	return labels["uz"]
}

// SummaryLabel returns the footer caption for kind.
func (l Labels) SummaryLabel(kind SummaryKind) string {
	switch kind {
	case SummaryMax:
		return l.Max
	case SummaryMean:
		return l.Mean
	case SummaryMin:
		return l.Min
	default:
		return string(kind)
	}
}
