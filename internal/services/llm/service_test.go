package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
)

func newTestService() *Service {
	return NewService(common.NewDefaultConfig(), common.GetLogger())
}

func TestBuildGeminiConfig_Defaults(t *testing.T) {
	svc := newTestService()

	config, err := svc.buildGeminiConfig(interfaces.CompletionRequest{}, "")
	require.NoError(t, err)

	assert.Equal(t, int32(4096), config.MaxOutputTokens)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.3, float64(*config.Temperature), 1e-6)
	assert.Nil(t, config.SystemInstruction)
	assert.Nil(t, config.ResponseSchema)
}

func TestBuildGeminiConfig_RequestOverrides(t *testing.T) {
	svc := newTestService()

	config, err := svc.buildGeminiConfig(interfaces.CompletionRequest{
		Temperature: 0.7,
		MaxTokens:   512,
	}, "be terse")
	require.NoError(t, err)

	assert.Equal(t, int32(512), config.MaxOutputTokens)
	assert.InDelta(t, 0.7, float64(*config.Temperature), 1e-6)
	require.NotNil(t, config.SystemInstruction)
}

func TestBuildGeminiConfig_SchemaEnablesJSONMode(t *testing.T) {
	svc := newTestService()

	config, err := svc.buildGeminiConfig(interfaces.CompletionRequest{
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"label": map[string]interface{}{"type": "string"},
			},
		},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "application/json", config.ResponseMIMEType)
	require.NotNil(t, config.ResponseSchema)
}
