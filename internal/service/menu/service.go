package menu

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	"pizzashack/internal/domain"
)

// Service holds the menu as one process-wide immutable snapshot. Reload is
// an explicit administrative operation, never ambient mutation.
type Service struct {
	path     string
	snapshot atomic.Pointer[domain.Menu]
}

// Load reads and validates the menu file, returning a ready Service.
func Load(path string) (*Service, error) {
	s := &Service{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Menu returns the current snapshot by value; callers cannot mutate the
// shared copy through it.
func (s *Service) Menu() domain.Menu {
	return *s.snapshot.Load()
}

// Reload re-reads the menu file and swaps the snapshot atomically. An
// invalid file leaves the previous snapshot in place.
func (s *Service) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read menu %s: %w", s.path, err)
	}
	var m domain.Menu
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse menu %s: %w", s.path, err)
	}
	if err := validate(m); err != nil {
		return fmt.Errorf("menu %s: %w", s.path, err)
	}
	s.snapshot.Store(&m)
	return nil
}

func validate(m domain.Menu) error {
	if len(m.Groups) == 0 {
		return fmt.Errorf("no groups")
	}
	for _, g := range m.Groups {
		if g.Name == "" {
			return fmt.Errorf("group without name")
		}
		for _, it := range g.Items {
			if it.Name == "" {
				return fmt.Errorf("group %s: item without name", g.Name)
			}
			for _, ch := range it.Choices {
				if ch.Description == "" {
					return fmt.Errorf("item %s: choice without description", it.Name)
				}
				if ch.Price.IsNegative() {
					return fmt.Errorf("item %s: choice %s has negative price", it.Name, ch.Description)
				}
			}
		}
	}
	return nil
}
