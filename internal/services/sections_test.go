package services

import "testing"

func TestParseResumeSections(t *testing.T) {
	text := `Jane Doe
Senior Engineer

EDUCATION
BSc Computer Science, MIT

TECHNICAL SKILLS
Go, Python, Kubernetes

WORK EXPERIENCE
Acme Corp, 2019-2024
Built the billing platform

AWARDS
Employee of the year`

	sections := ParseResumeSections(text)

	if sections["education"] != "BSc Computer Science, MIT" {
		t.Errorf("unexpected education section: %q", sections["education"])
	}
	if sections["skills"] != "Go, Python, Kubernetes" {
		t.Errorf("unexpected skills section: %q", sections["skills"])
	}
	if sections["experience"] != "Acme Corp, 2019-2024\nBuilt the billing platform" {
		t.Errorf("unexpected experience section: %q", sections["experience"])
	}
	if sections["awards"] != "Employee of the year" {
		t.Errorf("unexpected awards section: %q", sections["awards"])
	}
	if sections["projects"] != "" {
		t.Errorf("expected empty projects section, got %q", sections["projects"])
	}
}

func TestParseResumeSections_PreambleDropped(t *testing.T) {
	text := "Jane Doe\njane@example.com\n\nSKILLS\nGo"

	sections := ParseResumeSections(text)

	if sections["skills"] != "Go" {
		t.Errorf("unexpected skills section: %q", sections["skills"])
	}
	for name, content := range sections {
		if name != "skills" && content != "" {
			t.Errorf("expected section %s to be empty, got %q", name, content)
		}
	}
}

func TestParseResumeSections_LongLineIsNotAHeader(t *testing.T) {
	// Keyword-bearing lines at 50+ characters stay section content.
	text := "EXPERIENCE\nI have broad experience building and operating distributed systems"

	sections := ParseResumeSections(text)

	want := "I have broad experience building and operating distributed systems"
	if sections["experience"] != want {
		t.Errorf("expected long line kept as content, got %q", sections["experience"])
	}
}

func TestParseResumeSections_CaseInsensitiveHeaders(t *testing.T) {
	text := "Education\nMSc\n\nwork history\nFreelance"

	sections := ParseResumeSections(text)

	if sections["education"] != "MSc" {
		t.Errorf("unexpected education section: %q", sections["education"])
	}
	if sections["experience"] != "Freelance" {
		t.Errorf("unexpected experience section: %q", sections["experience"])
	}
}

func TestParseResumeSections_FirstKeywordGroupWins(t *testing.T) {
	text := "Education & Skills\nBSc and Go"

	sections := ParseResumeSections(text)

	if sections["education"] != "BSc and Go" {
		t.Errorf("expected education to claim the combined header, got %q", sections["education"])
	}
	if sections["skills"] != "" {
		t.Errorf("expected empty skills section, got %q", sections["skills"])
	}
}

func TestParseResumeSections_Empty(t *testing.T) {
	sections := ParseResumeSections("")

	if len(sections) != 5 {
		t.Fatalf("expected all 5 section keys, got %d", len(sections))
	}
	for name, content := range sections {
		if content != "" {
			t.Errorf("expected section %s to be empty, got %q", name, content)
		}
	}
}
