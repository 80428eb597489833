package brief

import "google.golang.org/genai"

// ResearchSchema describes the research object for structured output.
func ResearchSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":        {Type: genai.TypeString, Description: "Short headline for today's brief"},
			"introduction": {Type: genai.TypeString, Description: "Opening paragraph that frames the topic"},
			"keyFindings":  {Type: genai.TypeString, Description: "The main research findings in plain prose"},
			"conclusion":   {Type: genai.TypeString, Description: "Practical takeaway for the reader"},
			"source":       {Type: genai.TypeString, Description: "Research area, authors or publications drawn on"},
		},
		Required: []string{"title", "introduction", "keyFindings", "conclusion", "source"},
	}
}

// ConceptsSchema describes the concept list for structured output.
func ConceptsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"term":       {Type: genai.TypeString},
				"definition": {Type: genai.TypeString},
			},
			Required: []string{"term", "definition"},
		},
	}
}

// ResponseSchema returns the top-level schema for a prompt section.
func ResponseSchema(section Section) *genai.Schema {
	props := map[string]*genai.Schema{}
	var required []string
	if section != SectionConcepts {
		props["research"] = ResearchSchema()
		required = append(required, "research")
	}
	if section != SectionResearch {
		props["concepts"] = ConceptsSchema()
		required = append(required, "concepts")
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   required,
	}
}
