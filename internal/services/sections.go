package services

import "strings"

type resumeSection struct {
	name     string
	keywords []string
}

// Order matters: the first keyword group that matches claims the header line.
var resumeSectionDefs = []resumeSection{
	{"education", []string{"education", "academic", "qualification", "degree"}},
	{"skills", []string{"skills", "technical skills", "technologies", "competencies"}},
	{"experience", []string{"experience", "employment", "work history", "career"}},
	{"projects", []string{"projects", "portfolio", "personal work"}},
	{"awards", []string{"awards", "achievements", "honors", "certifications"}},
}

// ParseResumeSections splits resume text into canonical sections. A line
// counts as a section header when it contains a section keyword and is
// shorter than 50 characters; subsequent lines accumulate under that section
// until the next header. Text before the first header is dropped.
func ParseResumeSections(text string) map[string]string {
	content := make(map[string][]string, len(resumeSectionDefs))

	current := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		matched := ""
		if len(trimmed) > 0 && len(trimmed) < 50 {
			for _, s := range resumeSectionDefs {
				for _, kw := range s.keywords {
					if strings.Contains(lower, kw) {
						matched = s.name
						break
					}
				}
				if matched != "" {
					break
				}
			}
		}

		if matched != "" {
			current = matched
			continue
		}
		if current != "" {
			content[current] = append(content[current], line)
		}
	}

	sections := make(map[string]string, len(resumeSectionDefs))
	for _, s := range resumeSectionDefs {
		sections[s.name] = strings.TrimSpace(strings.Join(content[s.name], "\n"))
	}

	return sections
}
