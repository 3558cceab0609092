package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"todo/internal/service"
)

// validateInput checks a create payload against the loaded reference data.
func (s *Store) validateInput(in service.TodoInput) error {
	var errs criterio.FieldErrorsBuilder

	if err := nonEmpty(in.Title); err != nil {
		errs = errs.Append("title", err)
	}
	if err := calendarDate(in.DueDate); err != nil {
		errs = errs.Append("dueDate", err)
	}
	if err := s.knownCategory(in.CategoryID); err != nil {
		errs = errs.Append("categoryId", err)
	}
	if err := s.knownPriority(in.PriorityID); err != nil {
		errs = errs.Append("priorityId", err)
	}

	return errs.ToError()
}

// validatePatch checks only the fields present in a partial update.
func (s *Store) validatePatch(p service.TodoPatch) error {
	var errs criterio.FieldErrorsBuilder

	if p.Title != nil {
		if err := nonEmpty(*p.Title); err != nil {
			errs = errs.Append("title", err)
		}
	}
	if p.DueDate != nil {
		if err := calendarDate(*p.DueDate); err != nil {
			errs = errs.Append("dueDate", err)
		}
	}
	if p.CategoryID != nil {
		if err := s.knownCategory(*p.CategoryID); err != nil {
			errs = errs.Append("categoryId", err)
		}
	}
	if p.PriorityID != nil {
		if err := s.knownPriority(*p.PriorityID); err != nil {
			errs = errs.Append("priorityId", err)
		}
	}

	return errs.ToError()
}

func (s *Store) knownCategory(id string) error {
	if id == "" {
		return errors.New("is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("unknown category %q", id)
	}
	return nil
}

func (s *Store) knownPriority(id string) error {
	if id == "" {
		return errors.New("is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.priorities[id]; !ok {
		return fmt.Errorf("unknown priority %q", id)
	}
	return nil
}

func nonEmpty(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("is required")
	}
	return nil
}

func calendarDate(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("is required")
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(v)); err != nil {
		return fmt.Errorf("must be a date like 2024-01-31")
	}
	return nil
}
