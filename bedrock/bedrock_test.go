package bedrock_test

import (
	"bedrockproxy/bedrock"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"gotest.tools/v3/assert"
)

const testModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"

type fakeRuntime struct {
	body  string
	err   error
	calls int
	input *bedrockruntime.InvokeModelInput
}

func (f *fakeRuntime) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.calls++
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{
		Body:        []byte(f.body),
		ContentType: aws.String("application/json"),
	}, nil
}

func TestRequestEnvelope(t *testing.T) {
	fake := &fakeRuntime{body: `{"content":[{"type":"text","text":"hi"}]}`}
	client := bedrock.New(fake, testModel)

	_, err := client.GenerateText(context.Background(), "Tell me a joke")
	assert.NilError(t, err)

	assert.Equal(t, fake.calls, 1)
	assert.Equal(t, aws.ToString(fake.input.ModelId), testModel)
	assert.Equal(t, aws.ToString(fake.input.ContentType), "application/json")
	assert.Equal(t, aws.ToString(fake.input.Accept), "application/json")

	var got map[string]any
	assert.NilError(t, json.Unmarshal(fake.input.Body, &got))
	assert.Equal(t, got["anthropic_version"], "bedrock-2023-05-31")
	assert.Equal(t, got["max_tokens"], float64(4096))
	assert.Equal(t, got["temperature"], 0.7)
	assert.DeepEqual(t, got["messages"], []any{
		map[string]any{"role": "user", "content": "Tell me a joke"},
	})
}

func TestGenerateText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{
			name: "single text block",
			body: `{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"V"}],"stop_reason":"end_turn"}`,
			want: "V",
		},
		{
			name: "non text blocks are skipped in order",
			body: `{"content":[{"type":"text","text":"A"},{"type":"image","source":{"type":"base64","data":"AAAA"}},{"type":"text","text":"B"}]}`,
			want: "AB",
		},
		{
			name: "tool use block ignored",
			body: `{"content":[{"type":"tool_use","id":"t1","name":"lookup","input":{}},{"type":"text","text":"done"}]}`,
			want: "done",
		},
		{
			name:    "empty content list",
			body:    `{"content":[]}`,
			wantErr: bedrock.ErrEmptyGeneration,
		},
		{
			name:    "missing content key",
			body:    `{"stop_reason":"end_turn"}`,
			wantErr: bedrock.ErrEmptyGeneration,
		},
		{
			name:    "text block without text",
			body:    `{"content":[{"type":"text"},{"type":"text","text":""}]}`,
			wantErr: bedrock.ErrEmptyGeneration,
		},
		{
			name:    "only non text blocks",
			body:    `{"content":[{"type":"image","text":"not me"}]}`,
			wantErr: bedrock.ErrEmptyGeneration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := bedrock.New(&fakeRuntime{body: tt.body}, testModel)
			got, err := client.GenerateText(context.Background(), "prompt")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, got, "")
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}

func TestGenerateTextIsDeterministic(t *testing.T) {
	client := bedrock.New(&fakeRuntime{body: `{"content":[{"type":"text","text":"same"}]}`}, testModel)
	first, err := client.GenerateText(context.Background(), "p")
	assert.NilError(t, err)
	second, err := client.GenerateText(context.Background(), "p")
	assert.NilError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateTextInvalidJSON(t *testing.T) {
	for _, body := range []string{"not json", `{"content":`, `{"content":"text"}`, ``} {
		client := bedrock.New(&fakeRuntime{body: body}, testModel)
		_, err := client.GenerateText(context.Background(), "prompt")

		var parseErr *bedrock.ResponseParseError
		assert.Assert(t, errors.As(err, &parseErr), "body %q: got %v", body, err)
	}
}

func TestGenerateTextProviderError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{
			name:    "generic api error",
			err:     &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"},
			code:    "ThrottlingException",
			message: "Rate exceeded",
		},
		{
			name:    "modeled exception",
			err:     &types.AccessDeniedException{Message: aws.String("not authorized")},
			code:    "AccessDeniedException",
			message: "not authorized",
		},
		{
			name: "wrapped in operation error",
			err: &smithy.OperationError{
				ServiceID:     "Bedrock Runtime",
				OperationName: "InvokeModel",
				Err:           &types.ValidationException{Message: aws.String("malformed input")},
			},
			code:    "ValidationException",
			message: "malformed input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := bedrock.New(&fakeRuntime{err: tt.err}, testModel)
			_, err := client.GenerateText(context.Background(), "prompt")

			var provErr *bedrock.ProviderError
			assert.Assert(t, errors.As(err, &provErr))
			assert.Equal(t, provErr.Code, tt.code)
			assert.Equal(t, provErr.Message, tt.message)
		})
	}
}

func TestGenerateTextTransportError(t *testing.T) {
	client := bedrock.New(&fakeRuntime{err: context.DeadlineExceeded}, testModel)
	_, err := client.GenerateText(context.Background(), "prompt")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var provErr *bedrock.ProviderError
	assert.Assert(t, !errors.As(err, &provErr))
}

func TestContentBlockKind(t *testing.T) {
	var blocks []bedrock.ContentBlock
	err := json.Unmarshal([]byte(`[{"type":"text","text":"x"},{"type":"tool_use","text":"y"},{}]`), &blocks)
	assert.NilError(t, err)
	assert.Equal(t, len(blocks), 3)
	assert.Equal(t, blocks[0].Kind, bedrock.KindText)
	assert.Equal(t, blocks[0].Text, "x")
	assert.Equal(t, blocks[1].Kind, bedrock.KindOther)
	assert.Equal(t, blocks[1].Type, "tool_use")
	assert.Equal(t, blocks[1].Text, "")
	assert.Equal(t, blocks[2].Kind.String(), "other")
}
