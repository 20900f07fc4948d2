package review

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/detect_type.md
	detectTypeTemplate string
	//go:embed prompts/extract_resume.md
	extractResumeTemplate string
	//go:embed prompts/grade_resume.md
	gradeResumeTemplate string
)

func renderPrompt(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(template))
}
