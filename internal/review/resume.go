package review

import (
	"strings"

	"google.golang.org/genai"

	"github.com/spigell/resume-reviewer/internal/ai"
	"github.com/spigell/resume-reviewer/internal/document"
)

// Resume is the structured record extracted from a resume document.
type Resume struct {
	Name           string                `json:"name"`
	City           string                `json:"city"`
	Experience     map[string]Experience `json:"experience"`
	Education      map[string]Education  `json:"education"`
	Skills         string                `json:"skills"`
	Certifications string                `json:"certifications"`
}

// Experience is keyed by company name in Resume.Experience.
type Experience struct {
	Years   string `json:"years"`
	Details string `json:"details"`
}

// Education is keyed by school name in Resume.Education.
type Education struct {
	Years  string `json:"years"`
	Degree string `json:"degree"`
}

// Grading is the score and feedback returned for a resume.
type Grading struct {
	Grade    int    `json:"grade"`
	Feedback string `json:"feedback"`
}

// MinGrade and MaxGrade bound Grading.Grade.
const (
	MinGrade = 1
	MaxGrade = 10
)

type detectedType struct {
	DocumentType string `json:"document_type"`
}

// extractedResume is the wire shape requested from the oracle. Response
// schemas cannot describe maps with arbitrary keys, so experience and
// education travel as lists and are keyed afterwards.
type extractedResume struct {
	Name           string            `json:"name"`
	City           string            `json:"city"`
	Experience     []experienceEntry `json:"experience"`
	Education      []educationEntry  `json:"education"`
	Skills         string            `json:"skills"`
	Certifications string            `json:"certifications"`
}

type experienceEntry struct {
	Company string `json:"company"`
	Years   string `json:"years"`
	Details string `json:"details"`
}

type educationEntry struct {
	School string `json:"school"`
	Years  string `json:"years"`
	Degree string `json:"degree"`
}

func (e *extractedResume) toResume() *Resume {
	r := &Resume{
		Name:           strings.TrimSpace(e.Name),
		City:           strings.TrimSpace(e.City),
		Experience:     make(map[string]Experience, len(e.Experience)),
		Education:      make(map[string]Education, len(e.Education)),
		Skills:         strings.TrimSpace(e.Skills),
		Certifications: strings.TrimSpace(e.Certifications),
	}

	for _, entry := range e.Experience {
		company := strings.TrimSpace(entry.Company)
		current := Experience{Years: strings.TrimSpace(entry.Years), Details: strings.TrimSpace(entry.Details)}
		if prev, ok := r.Experience[company]; ok {
			current = Experience{
				Years:   joinNonEmpty("; ", prev.Years, current.Years),
				Details: joinNonEmpty("\n", prev.Details, current.Details),
			}
		}
		r.Experience[company] = current
	}

	for _, entry := range e.Education {
		school := strings.TrimSpace(entry.School)
		current := Education{Years: strings.TrimSpace(entry.Years), Degree: strings.TrimSpace(entry.Degree)}
		if prev, ok := r.Education[school]; ok {
			current = Education{
				Years:  joinNonEmpty("; ", prev.Years, current.Years),
				Degree: joinNonEmpty("; ", prev.Degree, current.Degree),
			}
		}
		r.Education[school] = current
	}

	return r
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func stringSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func documentTypeContract() *ai.Contract {
	types := make([]string, 0, len(document.Types()))
	for _, t := range document.Types() {
		types = append(types, t.String())
	}

	return &ai.Contract{
		Name: "DocumentType",
		Schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"document_type": {
					Type:        genai.TypeString,
					Description: "Type of the document",
					Enum:        types,
					Format:      "enum",
				},
			},
			Required: []string{"document_type"},
		},
	}
}

func resumeContract(today string) *ai.Contract {
	return &ai.Contract{
		Name: "ExtractedResume",
		Schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name": stringSchema("Name of the person"),
				"city": stringSchema("City where the person lives"),
				"experience": {
					Type:        genai.TypeArray,
					Description: "Work experience, one entry per company. Today's date is " + today,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"company": stringSchema("Company name"),
							"years":   stringSchema("Years worked at the company"),
							"details": stringSchema("Role and responsibilities"),
						},
						Required:         []string{"company", "years", "details"},
						PropertyOrdering: []string{"company", "years", "details"},
					},
				},
				"education": {
					Type:        genai.TypeArray,
					Description: "Education, one entry per school",
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"school": stringSchema("School name"),
							"years":  stringSchema("Years attended"),
							"degree": stringSchema("Degree obtained"),
						},
						Required:         []string{"school", "years", "degree"},
						PropertyOrdering: []string{"school", "years", "degree"},
					},
				},
				"skills":         stringSchema("Skills of the person"),
				"certifications": stringSchema("Certifications of the person"),
			},
			Required:         []string{"name", "city", "experience", "education", "skills", "certifications"},
			PropertyOrdering: []string{"name", "city", "experience", "education", "skills", "certifications"},
		},
	}
}

func gradingContract() *ai.Contract {
	return &ai.Contract{
		Name: "GradingResult",
		Schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"grade": {
					Type:        genai.TypeInteger,
					Description: "Grade of the resume on a scale of 1-10",
					Minimum:     genai.Ptr[float64](MinGrade),
					Maximum:     genai.Ptr[float64](MaxGrade),
				},
				"feedback": {
					Type:        genai.TypeString,
					Description: "Feedback on the resume",
					MinLength:   genai.Ptr[int64](1),
				},
			},
			Required:         []string{"grade", "feedback"},
			PropertyOrdering: []string{"grade", "feedback"},
		},
	}
}
