package intercept

import (
	"context"
	"errors"
	"testing"
	"time"

	lockerrors "github.com/mirkobrombin/go-locked/v1/errors"
	"github.com/mirkobrombin/go-locked/v1/lock"
)

type account struct{}

func newInterceptor() (*Interceptor, *Table, *lock.Registry) {
	reg := lock.NewRegistry()
	table := NewTable()
	return NewInterceptor(table, lock.NewGuard(lock.WithRegistry(reg))), table, reg
}

func TestResolveMethodOverridesType(t *testing.T) {
	table := NewTable()
	table.BindType("bank.Account", lock.NewConfig(lock.WithName("accounts")))
	table.BindMethod("bank.Account", "Withdraw", lock.NewConfig(lock.WithName("accounts"), lock.Write()))

	cfg, err := table.Resolve("bank.Account", "Withdraw")
	if err != nil || cfg.Operation != lock.OperationWrite {
		t.Fatalf("expected method binding, got %+v %v", cfg, err)
	}
	cfg, err = table.Resolve("bank.Account", "Balance")
	if err != nil || cfg.Operation != lock.OperationRead || cfg.Name != "accounts" {
		t.Fatalf("expected type binding, got %+v %v", cfg, err)
	}
}

func TestResolveMissing(t *testing.T) {
	table := NewTable()
	_, err := table.Resolve("bank.Ledger", "Append")
	var me *MissingError
	if !errors.As(err, &me) || me.Type != "bank.Ledger" || me.Method != "Append" {
		t.Fatalf("expected MissingError, got %v", err)
	}
	if !errors.Is(err, lockerrors.ErrConfigurationMissing) {
		t.Fatal("expected ErrConfigurationMissing match")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustResolve to panic")
		}
	}()
	table.MustResolve("bank.Ledger", "Append")
}

func TestBindRejectsDuplicates(t *testing.T) {
	table := NewTable()
	if !table.BindType("T", lock.Config{}) || table.BindType("T", lock.Config{}) {
		t.Fatal("unexpected BindType result")
	}
	if !table.BindMethod("T", "M", lock.Config{}) || table.BindMethod("T", "M", lock.Config{}) {
		t.Fatal("unexpected BindMethod result")
	}
}

func TestInvokeMissingDoesNotCall(t *testing.T) {
	i, _, _ := newInterceptor()
	called := false
	err := i.Invoke(context.Background(), "T", "M", func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, lockerrors.ErrConfigurationMissing) || called {
		t.Fatalf("expected missing configuration, got %v called %v", err, called)
	}
}

func TestInvokeUsesResolvedLock(t *testing.T) {
	i, table, reg := newInterceptor()
	name := TypeName(&account{})
	table.BindType(name, lock.NewConfig(lock.WithName("acct-42"), lock.Write(), lock.WithTimeout(20, time.Millisecond)))

	err := i.Invoke(context.Background(), name, "Withdraw", func(context.Context) error {
		l, ok := reg.Lookup("acct-42")
		if !ok {
			t.Error("lock not created")
			return nil
		}
		if l.TryRLock() {
			t.Error("write lock not held")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	l, _ := reg.Lookup("acct-42")
	if err := l.RLock(context.Background()); err != nil {
		t.Fatal(err)
	}
	_, err = Call(context.Background(), i, name, "Withdraw", func(context.Context) (int, error) { return 1, nil })
	l.RUnlock()
	if !errors.Is(err, lockerrors.ErrTimeout) {
		t.Fatalf("expected timeout while a reader holds the lock, got %v", err)
	}
}

func TestCallReturnsValue(t *testing.T) {
	i, table, _ := newInterceptor()
	table.BindMethod("T", "Get", lock.Config{Name: "t"})
	v, err := Call(context.Background(), i, "T", "Get", func(context.Context) (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("unexpected %q %v", v, err)
	}
}

func TestTypeName(t *testing.T) {
	if n := TypeName(&account{}); n != "intercept.account" {
		t.Fatalf("unexpected type name %q", n)
	}
	if n := TypeName(account{}); n != "intercept.account" {
		t.Fatalf("unexpected type name %q", n)
	}
	if n := TypeName(nil); n != "<nil>" {
		t.Fatalf("unexpected type name %q", n)
	}
}
