package filemanager

import "github.com/okian/gvera/pkg/logger"

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithRoot sets the directory that all save targets are resolved under.
func WithRoot(root string) Option {
	return func(m *Manager) {
		if root != "" {
			m.root = root
		}
	}
}

// WithAllowedTypes restricts saved files to these sniffed media types.
// An empty list accepts every type.
func WithAllowedTypes(types []string) Option {
	return func(m *Manager) {
		m.allowed = normalizeTypes(types)
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}
