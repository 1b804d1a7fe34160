package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"course-portal/internal/auth"
	"course-portal/internal/domain"
	"course-portal/internal/repository/sqlite"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// memoryStore is an in-process storage.Service.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failPut bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) PutObject(_ context.Context, key string, body io.Reader, contentType string) error {
	if m.failPut {
		return errors.New("put failed")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) GetObjectURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (m *memoryStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

type fixture struct {
	stores     sqlite.Stores
	tokens     *auth.Tokens
	blobs      *memoryStore
	logs       *test.Hook
	users      UserService
	auth       AuthService
	catalog    CourseService
	enrollment EnrollmentService
	dashboard  DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stores := sqlite.NewStores(db)
	require.NoError(t, stores.Init(context.Background()))

	tokens, err := auth.NewTokens(auth.Config{Secret: "test-secret"})
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	hasher := NewBcryptHasher(bcrypt.MinCost)
	blobs := newMemoryStore()
	pictures := NewProfilePictures(blobs, "profile-pics", time.Minute, logger)

	return &fixture{
		stores:     stores,
		tokens:     tokens,
		blobs:      blobs,
		logs:       hook,
		users:      NewUserService(stores.Users, hasher, tokens, pictures, logger),
		auth:       NewAuthService(stores.Users, hasher, tokens, logger),
		catalog:    NewCourseService(stores.Courses),
		enrollment: NewEnrollmentService(stores.Enrollments, stores.Courses, logger),
		dashboard:  NewDashboardService(stores.Users, stores.Courses, stores.Enrollments, logger),
	}
}

func (f *fixture) register(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user, _, err := f.users.Register(context.Background(), RegisterInput{
		Name:            name,
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) course(t *testing.T, title string) *domain.Course {
	t.Helper()
	course := &domain.Course{Title: title, Description: "about " + title}
	_, err := f.stores.Courses.Create(context.Background(), course)
	require.NoError(t, err)
	return course
}

func (f *fixture) seedCourses(t *testing.T, n int) []*domain.Course {
	t.Helper()
	out := make([]*domain.Course, n)
	for i := range out {
		out[i] = f.course(t, fmt.Sprintf("Course %d", i+1))
	}
	return out
}

func pngUpload() *Upload {
	return &Upload{Filename: "me.png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)}
}
