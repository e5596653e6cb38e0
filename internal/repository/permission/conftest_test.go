package permission

import (
	"context"

	"github.com/belljun3395/okchat/internal/domain/document"
)

type mockStore struct {
	rules map[string]map[string]string
	err   error
	keys  []string
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.keys = append(m.keys, key)
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.rules[key]; ok {
		return r, nil
	}
	return map[string]string{}, nil
}

func doc(id, path string) document.Result {
	return document.New(document.Fields{ID: id, Path: path})
}
