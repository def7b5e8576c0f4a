package gradebook

import "strings"

// Messages are the texts the error surface shows. Write failures are
// shown as prefix + reason.
type Messages struct {
	LoadFailed          string
	AddStudentFailed    string
	AddSubjectFailed    string
	GradeUpdateFailed   string
	DeleteStudentFailed string
	DeleteSubjectFailed string
}

var catalog = map[string]Messages{
	"uz": {
		LoadFailed:          "Internetga ulanishda yoki ma'lumot olishda xatolik",
		AddStudentFailed:    "Talaba qo‘shishda xatolik: ",
		AddSubjectFailed:    "Fan qo‘shishda xatolik: ",
		GradeUpdateFailed:   "Baho yangilashda xatolik: ",
		DeleteStudentFailed: "Talabani o‘chirishda xatolik: ",
		DeleteSubjectFailed: "Fanni o‘chirishda xatolik: ",
	},
	"en": {
		LoadFailed:          "Could not connect or load data",
		AddStudentFailed:    "Could not add student: ",
		AddSubjectFailed:    "Could not add subject: ",
		GradeUpdateFailed:   "Could not update grade: ",
		DeleteStudentFailed: "Could not delete student: ",
		DeleteSubjectFailed: "Could not delete subject: ",
	},
}

// DefaultLocale is used when a locale is unknown.
const DefaultLocale = "uz"

// MessagesFor returns the catalog entry for locale, falling back to DefaultLocale.
func MessagesFor(locale string) Messages {
	if m, ok := catalog[strings.ToLower(strings.TrimSpace(locale))]; ok {
		return m
	}
	return catalog[DefaultLocale]
}

// SupportedLocale reports whether locale has a catalog entry.
func SupportedLocale(locale string) bool {
	_, ok := catalog[strings.ToLower(strings.TrimSpace(locale))]
	return ok
}
