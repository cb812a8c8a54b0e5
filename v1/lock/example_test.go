package lock_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	lockerrors "github.com/mirkobrombin/go-locked/v1/errors"
	"github.com/mirkobrombin/go-locked/v1/lock"
)

func Example() {
	g := lock.NewGuard(lock.WithRegistry(lock.NewRegistry()))
	cfg := lock.NewConfig(lock.WithName("acct-42"), lock.Write(), lock.WithTimeout(50, time.Millisecond))

	balance, err := lock.Run(context.Background(), g, cfg, func(ctx context.Context) (int, error) {
		return 100 - 30, nil
	})
	if errors.Is(err, lockerrors.ErrTimeout) {
		fmt.Println("account busy")
		return
	}
	fmt.Println(balance)
	// Output: 70
}
