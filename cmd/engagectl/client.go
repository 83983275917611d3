package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

func client() *resty.Client {
	return resty.New().SetBaseURL(apiFlag)
}

// printResponse pretty-prints the body and surfaces non-2xx as errors.
func printResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}

	var pretty any
	if jsonErr := json.Unmarshal(resp.Body(), &pretty); jsonErr != nil {
		fmt.Println(resp.String())
		return nil
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
	return nil
}
