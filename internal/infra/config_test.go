package infra

import "testing"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/app")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8787" {
		t.Fatalf("Port = %q, want 8787", cfg.Port)
	}
	if cfg.DailyLimit != 3 {
		t.Fatalf("DailyLimit = %d, want 3", cfg.DailyLimit)
	}
	if cfg.DailyBudgetKrw != 10000 {
		t.Fatalf("DailyBudgetKrw = %d, want 10000", cfg.DailyBudgetKrw)
	}
	// ceil(0.039 * 1380) = ceil(53.82) = 54
	if cfg.CostPerCallKrw != 54 {
		t.Fatalf("CostPerCallKrw = %d, want 54", cfg.CostPerCallKrw)
	}
	if cfg.PurchasedLimit != 20 {
		t.Fatalf("PurchasedLimit = %d, want 20", cfg.PurchasedLimit)
	}
	if cfg.MaxBodyBytes != 22*1024*1024 {
		t.Fatalf("MaxBodyBytes = %d", cfg.MaxBodyBytes)
	}
	if cfg.PayPalEnv != "sandbox" {
		t.Fatalf("PayPalEnv = %q, want sandbox", cfg.PayPalEnv)
	}
}

func TestLoadConfigCostOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("COST_PER_CALL_KRW", "100")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CostPerCallKrw != 100 {
		t.Fatalf("CostPerCallKrw = %d, want override 100", cfg.CostPerCallKrw)
	}
}

func TestLoadConfigDerivedCostFollowsPriceInputs(t *testing.T) {
	setRequired(t)
	t.Setenv("USD_PER_IMAGE", "0.05")
	t.Setenv("FX_KRW_PER_USD", "1300")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	// ceil(0.05 * 1300) = 65
	if cfg.CostPerCallKrw != 65 {
		t.Fatalf("CostPerCallKrw = %d, want 65", cfg.CostPerCallKrw)
	}
}

func TestLoadConfigRequiredKeys(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig accepted a missing DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/app")
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig accepted a missing JWT_SECRET")
	}
}
