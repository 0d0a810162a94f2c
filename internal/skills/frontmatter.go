package skills

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var frontmatterDelim = []byte("---")

// LoadSkillMarkdown reads a SKILL.md file whose YAML frontmatter carries the
// skill descriptor. The markdown body after the frontmatter is the skill's
// long-form documentation and is ignored by the host.
func LoadSkillMarkdown(path string) (*Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill %s: %w", path, err)
	}

	fm, err := extractFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("skill %s: %w", path, err)
	}

	var s Skill
	if err := yaml.Unmarshal(fm, &s); err != nil {
		return nil, fmt.Errorf("parse skill %s: %w", path, err)
	}

	s.Dir = filepath.Dir(path)
	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate skill %s: %w", path, err)
	}

	return &s, nil
}

// extractFrontmatter returns the YAML between the leading "---" fences.
func extractFrontmatter(data []byte) ([]byte, error) {
	trimmed := bytes.TrimLeft(data, "\r\n \t")
	if !bytes.HasPrefix(trimmed, frontmatterDelim) {
		return nil, fmt.Errorf("missing YAML frontmatter")
	}

	rest := trimmed[len(frontmatterDelim):]
	// Frontmatter opener must end its line.
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return nil, fmt.Errorf("missing YAML frontmatter")
	}
	rest = rest[nl+1:]

	end := bytes.Index(rest, append([]byte("\n"), frontmatterDelim...))
	if end < 0 {
		return nil, fmt.Errorf("unterminated YAML frontmatter")
	}

	return rest[:end+1], nil
}
