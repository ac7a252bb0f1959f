package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/topolab/pkg/httputil"
)

func ExampleRetry() {
	attempts := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return &httputil.RetryableError{Err: errors.New("connection reset")}
		}
		return nil
	})

	fmt.Println("Attempts:", attempts)
	fmt.Println("Error:", err)
	// Output:
	// Attempts: 3
	// Error: <nil>
}

func ExampleRetry_permanentError() {
	attempts := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		return errors.New("401 unauthorized")
	})

	// Errors not wrapped in RetryableError fail immediately.
	fmt.Println("Attempts:", attempts)
	fmt.Println("Error:", err)
	// Output:
	// Attempts: 1
	// Error: 401 unauthorized
}
