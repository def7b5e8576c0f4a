package gradebook

import (
	"context"
	"errors"
	"sync"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

type stubFetchError struct{ msg string }

func (e *stubFetchError) Error() string       { return "fetch: " + e.msg }
func (e *stubFetchError) UserMessage() string { return e.msg }

// fakeGateway is an in-memory backend that counts calls and can be told to fail.
type fakeGateway struct {
	mu       sync.Mutex
	students []journal.Student
	subjects []journal.Subject
	grades   []journal.Grade
	nextID   int64

	fail   map[string]error
	calls  map[string]int
	events []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		nextID: 100,
		fail:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeGateway) seed(students []journal.Student, subjects []journal.Subject, grades []journal.Grade) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.students, f.subjects, f.grades = students, subjects, grades
}

func (f *fakeGateway) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, op)
		return
	}
	f.fail[op] = err
}

func (f *fakeGateway) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) writeEvents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		if e != "list_students" && e != "list_subjects" && e != "list_grades" {
			out = append(out, e)
		} else if e == "list_students" {
			out = append(out, "refresh")
		}
	}
	return out
}

func (f *fakeGateway) enter(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	f.events = append(f.events, op)
	return f.fail[op]
}

func (f *fakeGateway) ListStudents(ctx context.Context) ([]journal.Student, error) {
	if err := f.enter("list_students"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]journal.Student(nil), f.students...), nil
}

func (f *fakeGateway) ListSubjects(ctx context.Context) ([]journal.Subject, error) {
	if err := f.enter("list_subjects"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]journal.Subject(nil), f.subjects...), nil
}

func (f *fakeGateway) ListGrades(ctx context.Context) ([]journal.Grade, error) {
	if err := f.enter("list_grades"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]journal.Grade(nil), f.grades...), nil
}

func (f *fakeGateway) CreateStudent(ctx context.Context, name string) (journal.Student, error) {
	if err := f.enter("create_student"); err != nil {
		return journal.Student{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s := journal.Student{ID: f.nextID, Name: name}
	f.students = append(f.students, s)
	return s, nil
}

func (f *fakeGateway) CreateSubject(ctx context.Context, name string) (journal.Subject, error) {
	if err := f.enter("create_subject"); err != nil {
		return journal.Subject{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s := journal.Subject{ID: f.nextID, Name: name}
	f.subjects = append(f.subjects, s)
	return s, nil
}

func (f *fakeGateway) UpsertGrade(ctx context.Context, studentID, subjectID int64, score int) error {
	if err := f.enter("upsert_grade"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, g := range f.grades {
		if g.StudentID == studentID && g.SubjectID == subjectID {
			f.grades[i].Score = score
			return nil
		}
	}
	f.grades = append(f.grades, journal.Grade{StudentID: studentID, SubjectID: subjectID, Score: score})
	return nil
}

func (f *fakeGateway) DeleteStudent(ctx context.Context, id int64) error {
	if err := f.enter("delete_student"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.students {
		if s.ID == id {
			f.students = append(f.students[:i], f.students[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeGateway) DeleteSubject(ctx context.Context, id int64) error {
	if err := f.enter("delete_subject"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.subjects {
		if s.ID == id {
			f.subjects = append(f.subjects[:i], f.subjects[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}
