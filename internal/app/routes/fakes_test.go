package routes

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/app/repositories"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
)

// archive is an in-memory stand-in for the klausuren and loesungen tables
type archive struct {
	mu             sync.Mutex
	exams          []models.Exam
	solutions      []models.Solution
	nextExamID     int64
	nextSolutionID int64
	failSolutions  bool
}

func (a *archive) examByID(id int64) *models.Exam {
	for i := range a.exams {
		if a.exams[i].ID == id {
			return &a.exams[i]
		}
	}
	return nil
}

type fakeExamRepo struct{ a *archive }

func (r fakeExamRepo) FindBySemester(ctx context.Context, semester string) ([]models.ExamMetadata, error) {
	result := []models.ExamMetadata{}
	for _, e := range r.a.exams {
		if e.Semester == semester {
			result = append(result, e.Metadata())
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Fach != result[j].Fach {
			return result[i].Fach < result[j].Fach
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r fakeExamRepo) FindByID(ctx context.Context, id int64) (*models.Exam, error) {
	if e := r.a.examByID(id); e != nil {
		exam := *e
		return &exam, nil
	}
	return nil, apperrors.ErrExamNotFound
}

func (r fakeExamRepo) GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error) {
	e := r.a.examByID(id)
	if e == nil {
		return nil, apperrors.ErrExamNotFound
	}
	return &models.PDFDocument{Filename: e.PDFFilename(), Content: e.PDF}, nil
}

func (r fakeExamRepo) Create(ctx context.Context, exam *models.Exam) (int64, error) {
	r.a.nextExamID++
	exam.ID = r.a.nextExamID
	r.a.exams = append(r.a.exams, *exam)
	return exam.ID, nil
}

type fakeSolutionRepo struct{ a *archive }

func (r fakeSolutionRepo) FindBySemester(ctx context.Context, semester string) ([]models.SolutionMetadata, error) {
	result := []models.SolutionMetadata{}
	for _, s := range r.a.solutions {
		exam := r.a.examByID(s.ExamID)
		if exam != nil && exam.Semester == semester {
			result = append(result, s.Metadata(exam))
		}
	}
	return result, nil
}

func (r fakeSolutionRepo) FindByID(ctx context.Context, id int64) (*models.Solution, error) {
	for _, s := range r.a.solutions {
		if s.ID == id {
			sol := s
			return &sol, nil
		}
	}
	return nil, apperrors.ErrSolutionNotFound
}

func (r fakeSolutionRepo) GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error) {
	for _, s := range r.a.solutions {
		if s.ID == id {
			exam := r.a.examByID(s.ExamID)
			return &models.PDFDocument{Filename: models.SolutionPDFFilename(exam.Name), Content: s.PDF}, nil
		}
	}
	return nil, apperrors.ErrSolutionNotFound
}

func (r fakeSolutionRepo) Create(ctx context.Context, solution *models.Solution) (int64, error) {
	if r.a.failSolutions {
		return 0, errors.New("disk full")
	}
	if r.a.examByID(solution.ExamID) == nil {
		return 0, apperrors.New(apperrors.KindValidation, apperrors.ErrExamNotFound.Message)
	}
	r.a.nextSolutionID++
	solution.ID = r.a.nextSolutionID
	r.a.solutions = append(r.a.solutions, *solution)
	return solution.ID, nil
}

// fakeTransactor restores the archive when the unit of work fails
type fakeTransactor struct{ a *archive }

func (t fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repositories.TxRepositories) error) error {
	t.a.mu.Lock()
	defer t.a.mu.Unlock()

	exams := append([]models.Exam(nil), t.a.exams...)
	solutions := append([]models.Solution(nil), t.a.solutions...)
	examID, solutionID := t.a.nextExamID, t.a.nextSolutionID

	err := fn(ctx, repositories.TxRepositories{
		Exams:     fakeExamRepo{t.a},
		Solutions: fakeSolutionRepo{t.a},
	})
	if err != nil {
		t.a.exams, t.a.solutions = exams, solutions
		t.a.nextExamID, t.a.nextSolutionID = examID, solutionID
	}
	return err
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}
