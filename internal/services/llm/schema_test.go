package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertToGenaiSchema(t *testing.T) {
	schemaMap := map[string]interface{}{
		"type":     "object",
		"required": []string{"intent", "confidence"},
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
			"keywords": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "string",
				},
			},
		},
	}

	schema, err := convertToGenaiSchema(schemaMap)
	require.NoError(t, err)
	require.NotNil(t, schema)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"intent", "confidence"}, schema.Required)

	intent := schema.Properties["intent"]
	require.NotNil(t, intent)
	assert.Equal(t, genai.TypeString, intent.Type)
	assert.Len(t, intent.Enum, 4)

	confidence := schema.Properties["confidence"]
	require.NotNil(t, confidence)
	assert.Equal(t, genai.TypeNumber, confidence.Type)
	require.NotNil(t, confidence.Minimum)
	assert.Equal(t, 0.0, *confidence.Minimum)
	require.NotNil(t, confidence.Maximum)
	assert.Equal(t, 1.0, *confidence.Maximum)

	keywords := schema.Properties["keywords"]
	require.NotNil(t, keywords)
	assert.Equal(t, genai.TypeArray, keywords.Type)
	require.NotNil(t, keywords.Items)
	assert.Equal(t, genai.TypeString, keywords.Items.Type)
}

func TestConvertToGenaiSchema_Empty(t *testing.T) {
	schema, err := convertToGenaiSchema(nil)
	require.NoError(t, err)
	assert.Nil(t, schema)
}
