package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := New[string, int](time.Minute)
	defer c.Close()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, "gas", 42, time.Minute)
	got, ok := c.Get(ctx, "gas")
	if !ok || got != 42 {
		t.Errorf("Get = %d, %v; want 42, true", got, ok)
	}
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := New[string, string](time.Minute)

	c.Set(ctx, "k", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := New[string, string](time.Minute)

	c.Set(ctx, "k", "v", 0)
	time.Sleep(10 * time.Millisecond)

	if v, ok := c.Get(ctx, "k"); !ok || v != "v" {
		t.Errorf("Get = %q, %v; want v, true", v, ok)
	}
}

func TestCache_AddressKeys(t *testing.T) {
	ctx := context.Background()
	c := New[common.Address, uint8](time.Minute)

	weth := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	c.Set(ctx, weth, 18, 0)
	c.Set(ctx, usdc, 6, 0)

	if d, _ := c.Get(ctx, weth); d != 18 {
		t.Errorf("weth decimals = %d, want 18", d)
	}
	if d, _ := c.Get(ctx, usdc); d != 6 {
		t.Errorf("usdc decimals = %d, want 6", d)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	c.Delete(ctx, usdc)
	if _, ok := c.Get(ctx, usdc); ok {
		t.Error("expected usdc to be deleted")
	}
}
