package gate

import "strings"

// PathClass is the access class of a request path.
type PathClass int

// Path classes, checked in this order.
const (
	ClassUnclassified PathClass = iota
	ClassPublic
	ClassAdmin
	ClassAgent
)

func (c PathClass) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassAdmin:
		return "admin"
	case ClassAgent:
		return "agent"
	default:
		return "unclassified"
	}
}

const (
	adminPrefix = "/admin"
	agentPrefix = "/agent"
)

// Excluded reports whether path bypasses the gate entirely: build assets under /_next/,
// anything under /api, and any path containing a dot.
func Excluded(path string) bool {
	return strings.HasPrefix(path, "/_next/") ||
		strings.HasPrefix(path, "/api") ||
		strings.Contains(path, ".")
}

// Classifier maps request paths to access classes.
type Classifier struct {
	public []string
}

// NewClassifier builds a classifier for the given public paths.
func NewClassifier(publicPaths []string) Classifier {
	public := make([]string, 0, len(publicPaths))
	for _, p := range publicPaths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(p) > 1 {
			p = strings.TrimRight(p, "/")
		}
		public = append(public, p)
	}
	return Classifier{public: public}
}

// Classify returns the class of path. Public paths match exactly or as a parent segment.
func (c Classifier) Classify(path string) PathClass {
	for _, p := range c.public {
		if path == p || strings.HasPrefix(path, p+"/") {
			return ClassPublic
		}
	}
	switch {
	case strings.HasPrefix(path, adminPrefix):
		return ClassAdmin
	case strings.HasPrefix(path, agentPrefix):
		return ClassAgent
	default:
		return ClassUnclassified
	}
}
