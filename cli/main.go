package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"bedrockproxy"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

func main() {
	// Parse command line arguments
	promptPtr := flag.String("prompt", "", "The prompt to send to the Lambda function")
	functionPtr := flag.String("function", "bedrockproxy", "Name or ARN of the deployed function")
	pathPtr := flag.String("path", "/prod/generate", "Route the synthesized API Gateway event targets")
	flag.Parse()

	if *promptPtr == "" {
		log.Fatalf("prompt parameter is required")
	}

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}
	client := lambda.NewFromConfig(cfg)

	payload, err := GenerateEvent(*pathPtr, *promptPtr)
	if err != nil {
		log.Fatalf("failed to build event, %v", err)
	}

	result, err := client.Invoke(context.TODO(), &lambda.InvokeInput{
		FunctionName: aws.String(*functionPtr),
		Payload:      payload,
	})
	if err != nil {
		log.Fatalf("failed to invoke lambda function, %v", err)
	}
	if result.FunctionError != nil {
		log.Fatalf("lambda function returned an error: %s", aws.ToString(result.FunctionError))
	}

	text, err := ParseResult(result.Payload)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(text)
}

// GenerateEvent wraps a prompt in the REST API proxy event the function expects.
func GenerateEvent(path, prompt string) ([]byte, error) {
	body, err := json.Marshal(bedrockproxy.GenerateRequest{Prompt: &prompt})
	if err != nil {
		return nil, err
	}
	return json.Marshal(events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       path,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	})
}

// ParseResult unwraps the proxy response and returns the generated text.
func ParseResult(payload []byte) (string, error) {
	var resp events.APIGatewayProxyResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response payload, %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var failure bedrockproxy.ErrorResponse
		if err := json.Unmarshal([]byte(resp.Body), &failure); err != nil || failure.Detail == "" {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode, resp.Body)
		}
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, failure.Detail)
	}
	var answer bedrockproxy.GenerateResponse
	if err := json.Unmarshal([]byte(resp.Body), &answer); err != nil {
		return "", fmt.Errorf("failed to unmarshal answer, %w", err)
	}
	return answer.Text, nil
}
