package pipeline

// JSON schemas for structured LLM outputs. Gemini enforces these natively
// via ResponseSchema; for Claude they guide the prompt and the response is
// parsed and validated after the fact.

func classificationSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"intent", "confidence", "requires_retrieval", "reasoning"},
		"properties": map[string]interface{}{
			"intent": map[string]interface{}{
				"type": "string",
				"enum": []string{"search", "summarize", "compare", "general"},
			},
			"confidence": map[string]interface{}{
				"type":    "number",
				"minimum": 0.0,
				"maximum": 1.0,
			},
			"requires_retrieval": map[string]interface{}{
				"type": "boolean",
			},
			"reasoning": map[string]interface{}{
				"type": "string",
			},
		},
	}
}

func expansionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"expanded_query", "keywords"},
		"properties": map[string]interface{}{
			"expanded_query": map[string]interface{}{
				"type":        "string",
				"description": "Reformulated query with at least three words",
			},
			"keywords": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"reasoning": map[string]interface{}{
				"type": "string",
			},
		},
	}
}

func validationSchema() map[string]interface{} {
	score := func(desc string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "number",
			"minimum":     0.0,
			"maximum":     1.0,
			"description": desc,
		}
	}
	return map[string]interface{}{
		"type": "object",
		"required": []string{
			"coherence_score", "alignment_score", "hallucination_score",
			"completeness_score", "citation_score", "needs_regeneration",
		},
		"properties": map[string]interface{}{
			"coherence_score":         score("Internal logical consistency of the answer"),
			"alignment_score":         score("How directly the answer addresses the question"),
			"hallucination_score":     score("1.0 means every claim is supported by the passages"),
			"completeness_score":      score("Coverage of the relevant available information"),
			"citation_score":          score("Citations present, correct and sufficient"),
			"coherence_reasoning":     map[string]interface{}{"type": "string"},
			"alignment_reasoning":     map[string]interface{}{"type": "string"},
			"hallucination_reasoning": map[string]interface{}{"type": "string"},
			"completeness_reasoning":  map[string]interface{}{"type": "string"},
			"citation_reasoning":      map[string]interface{}{"type": "string"},
			"overall_assessment":      map[string]interface{}{"type": "string"},
			"needs_regeneration":      map[string]interface{}{"type": "boolean"},
			"specific_issues": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
	}
}
