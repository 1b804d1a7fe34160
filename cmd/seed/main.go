// Command seed fills the database with sample courses, students and
// enrollments. Running it twice adds nothing new.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"course-portal/internal/config"
	"course-portal/internal/domain"
	"course-portal/internal/repository"
	"course-portal/internal/repository/sqlite"
	"course-portal/internal/service"
)

const samplePassword = "password123"

var sampleCourses = []domain.Course{
	{Title: "Introduction to Python Programming", Description: "Learn the fundamentals of Python programming language including variables, loops, functions, and object-oriented programming."},
	{Title: "Web Development with Django", Description: "Build web applications using Django framework. Learn about models, views, templates, and deployment."},
	{Title: "React.js Fundamentals", Description: "Master React.js for building modern user interfaces. Learn components, state management, and hooks."},
	{Title: "Database Design and SQL", Description: "Learn database design principles and SQL for managing data effectively."},
	{Title: "Machine Learning Basics", Description: "Introduction to machine learning concepts, algorithms, and practical applications."},
	{Title: "DevOps and CI/CD", Description: "Learn about DevOps practices, continuous integration, and deployment strategies."},
}

var sampleUsers = []domain.User{
	{Name: "John Doe", Email: "john@example.com"},
	{Name: "Jane Smith", Email: "jane@example.com"},
	{Name: "Bob Johnson", Email: "bob@example.com"},
	{Name: "Alice Brown", Email: "alice@example.com"},
}

type seeder struct {
	stores sqlite.Stores
	hasher service.PasswordHasher
	rng    *rand.Rand
	logger logrus.FieldLogger
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Read()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	stores := sqlite.NewStores(db)
	if err := stores.Init(ctx); err != nil {
		logger.Fatalf("init repositories: %v", err)
	}

	s := &seeder{
		stores: stores,
		hasher: service.NewBcryptHasher(cfg.Auth.BcryptCost),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logger,
	}
	logger.Info("creating sample data")
	if err := s.run(ctx); err != nil {
		logger.Fatalf("seed: %v", err)
	}
	logger.Info("sample data ready")
}

func (s *seeder) run(ctx context.Context) error {
	courses := make([]domain.Course, 0, len(sampleCourses))
	for _, sample := range sampleCourses {
		course, err := s.course(ctx, sample)
		if err != nil {
			return err
		}
		courses = append(courses, *course)
	}

	for _, sample := range sampleUsers {
		user, err := s.user(ctx, sample)
		if err != nil {
			return err
		}
		if err := s.enrollRandomly(ctx, user, courses); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) course(ctx context.Context, sample domain.Course) (*domain.Course, error) {
	course, err := s.stores.Courses.GetByTitle(ctx, sample.Title)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup course %q: %w", sample.Title, err)
	}

	course = &domain.Course{Title: sample.Title, Description: sample.Description}
	if _, err := s.stores.Courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course %q: %w", sample.Title, err)
	}
	s.logger.WithField("title", course.Title).Info("created course")
	return course, nil
}

func (s *seeder) user(ctx context.Context, sample domain.User) (*domain.User, error) {
	user, err := s.stores.Users.GetByEmail(ctx, sample.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user %q: %w", sample.Email, err)
	}

	hash, err := s.hasher.Hash(samplePassword)
	if err != nil {
		return nil, err
	}
	user = &domain.User{
		Name:         sample.Name,
		Email:        sample.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if _, err := s.stores.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %q: %w", sample.Email, err)
	}
	s.logger.WithField("name", user.Name).Info("created user")
	return user, nil
}

// enrollRandomly picks 2 to 4 distinct courses. Existing enrollments are kept.
func (s *seeder) enrollRandomly(ctx context.Context, user *domain.User, courses []domain.Course) error {
	n := min(2+s.rng.IntN(3), len(courses))
	for _, i := range s.rng.Perm(len(courses))[:n] {
		course := courses[i]
		_, err := s.stores.Enrollments.Create(ctx, &domain.Enrollment{StudentID: user.ID, CourseID: course.ID})
		if errors.Is(err, repository.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("enroll %s in %q: %w", user.Email, course.Title, err)
		}
		s.logger.WithFields(logrus.Fields{"user": user.Name, "course": course.Title}).Info("enrolled")
	}
	return nil
}
