package proxy

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
)

func testHandler(context *RouteContext) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{StatusCode: 200}, nil
}

func testRequest(method HttpMethod, path string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		Resource:   path,
		Path:       path,
		HTTPMethod: method.String(),
		Headers:    map[string]string{},
	}
}

func dummy(v interface{}, name, category string) interface{} {
	file := fmt.Sprintf("testdata/dummy/%s.%s.json", name, category)

	content, err := os.ReadFile(file)
	if err != nil {
		log.Fatal(err)
	}

	err = json.Unmarshal(content, v)
	if err != nil {
		log.Fatal(err)
	}

	return v
}

func dummyAPIGatewayProxyRequest(category string) events.APIGatewayProxyRequest {
	return *dummy(&events.APIGatewayProxyRequest{}, "APIGatewayProxyRequest", category).(*events.APIGatewayProxyRequest)
}
