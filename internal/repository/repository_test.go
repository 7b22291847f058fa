package repository

import (
	"testing"
)

// TestPostgresRepos_ImplementInterfaces は各PostgreSQL実装がインターフェースを満たすことを検証する。
func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ HeadlineRepository = (*PostgresHeadlineRepo)(nil)
	var _ SummaryRepository = (*PostgresSummaryRepo)(nil)
	var _ DailySummaryRepository = (*PostgresDailySummaryRepo)(nil)
	var _ SnapshotRepository = (*PostgresSnapshotRepo)(nil)
}

func TestNewPostgresRepos_Initialize(t *testing.T) {
	if NewPostgresHeadlineRepo(nil) == nil {
		t.Error("NewPostgresHeadlineRepo returned nil")
	}
	if NewPostgresSummaryRepo(nil) == nil {
		t.Error("NewPostgresSummaryRepo returned nil")
	}
	if NewPostgresDailySummaryRepo(nil) == nil {
		t.Error("NewPostgresDailySummaryRepo returned nil")
	}
	if NewPostgresSnapshotRepo(nil) == nil {
		t.Error("NewPostgresSnapshotRepo returned nil")
	}
}

// TestDecodeBucket_NormalizesMissingSlices はpayloadに欠けたスライスが空スライスになることを検証する。
func TestDecodeBucket_NormalizesMissingSlices(t *testing.T) {
	b, err := decodeBucket([]byte(`{"country":"israel","day":"2024-09-05"}`))
	if err != nil {
		t.Fatalf("decodeBucket returned error: %v", err)
	}
	if b.Headlines == nil || b.Summaries == nil {
		t.Errorf("expected non-nil slices, got headlines=%v summaries=%v", b.Headlines, b.Summaries)
	}
}

// 日次総括を含む旧形式のpayloadも読める
func TestDecodeBucket_IgnoresLegacyDailySummary(t *testing.T) {
	b, err := decodeBucket([]byte(`{"country":"israel","day":"2024-09-05","headlines":[{"id":"h1"}],"daily_summary":null}`))
	if err != nil {
		t.Fatalf("decodeBucket returned error: %v", err)
	}
	if len(b.Headlines) != 1 || b.Headlines[0].ID != "h1" {
		t.Errorf("headlines = %+v", b.Headlines)
	}
}

func TestDecodeBucket_InvalidJSON(t *testing.T) {
	if _, err := decodeBucket([]byte(`{"headlines":`)); err == nil {
		t.Error("expected error for truncated payload")
	}
}
