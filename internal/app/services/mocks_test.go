package services

import (
	"context"
	"sync"

	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/app/repositories"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
)

// memoryDB is a tiny in-memory stand-in for the three tables
type memoryDB struct {
	mu        sync.Mutex
	exams     []models.Exam
	solutions []models.Solution
	users     map[string]models.User
	nextID    int64

	failSolutionInsert error
	failQueries        error
}

func newMemoryDB() *memoryDB {
	return &memoryDB{users: map[string]models.User{}}
}

func (m *memoryDB) id() int64 {
	m.nextID++
	return m.nextID
}

type mockExamRepo struct{ db *memoryDB }

func (r *mockExamRepo) FindBySemester(ctx context.Context, semester string) ([]models.ExamMetadata, error) {
	if r.db.failQueries != nil {
		return nil, r.db.failQueries
	}
	var out []models.ExamMetadata
	for _, e := range r.db.exams {
		if e.Semester == semester {
			out = append(out, e.Metadata())
		}
	}
	return out, nil
}

func (r *mockExamRepo) FindByID(ctx context.Context, id int64) (*models.Exam, error) {
	for _, e := range r.db.exams {
		if e.ID == id {
			exam := e
			return &exam, nil
		}
	}
	return nil, apperrors.ErrExamNotFound
}

func (r *mockExamRepo) GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error) {
	if r.db.failQueries != nil {
		return nil, r.db.failQueries
	}
	exam, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PDFDocument{Filename: exam.PDFFilename(), Content: exam.PDF}, nil
}

func (r *mockExamRepo) Create(ctx context.Context, exam *models.Exam) (int64, error) {
	exam.ID = r.db.id()
	r.db.exams = append(r.db.exams, *exam)
	return exam.ID, nil
}

type mockSolutionRepo struct{ db *memoryDB }

func (r *mockSolutionRepo) FindBySemester(ctx context.Context, semester string) ([]models.SolutionMetadata, error) {
	if r.db.failQueries != nil {
		return nil, r.db.failQueries
	}
	var out []models.SolutionMetadata
	for _, s := range r.db.solutions {
		for _, e := range r.db.exams {
			if e.ID == s.ExamID && e.Semester == semester {
				exam := e
				out = append(out, s.Metadata(&exam))
			}
		}
	}
	return out, nil
}

func (r *mockSolutionRepo) FindByID(ctx context.Context, id int64) (*models.Solution, error) {
	for _, s := range r.db.solutions {
		if s.ID == id {
			sol := s
			return &sol, nil
		}
	}
	return nil, apperrors.ErrSolutionNotFound
}

func (r *mockSolutionRepo) GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error) {
	sol, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, e := range r.db.exams {
		if e.ID == sol.ExamID {
			return &models.PDFDocument{Filename: models.SolutionPDFFilename(e.Name), Content: sol.PDF}, nil
		}
	}
	return nil, apperrors.ErrSolutionNotFound
}

func (r *mockSolutionRepo) Create(ctx context.Context, solution *models.Solution) (int64, error) {
	if r.db.failSolutionInsert != nil {
		return 0, r.db.failSolutionInsert
	}
	solution.ID = r.db.id()
	r.db.solutions = append(r.db.solutions, *solution)
	return solution.ID, nil
}

// mockTransactor snapshots the tables and restores them when fn fails
type mockTransactor struct {
	db    *memoryDB
	calls int
}

func (t *mockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repositories.TxRepositories) error) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.calls++

	exams := append([]models.Exam(nil), t.db.exams...)
	solutions := append([]models.Solution(nil), t.db.solutions...)

	err := fn(ctx, repositories.TxRepositories{
		Exams:     &mockExamRepo{db: t.db},
		Solutions: &mockSolutionRepo{db: t.db},
	})
	if err != nil {
		t.db.exams = exams
		t.db.solutions = solutions
	}
	return err
}

type mockUserRepo struct {
	db  *memoryDB
	err error
}

func (r *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.db.users[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range r.db.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// plainHasher compares "hash:"+password so tests avoid bcrypt cost
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) (bool, error) {
	return hash == "hash:"+password, nil
}
