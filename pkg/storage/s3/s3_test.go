package s3

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func expiryRule(id, prefix string, days int32) types.LifecycleRule {
	return types.LifecycleRule{
		ID:     aws.String(id),
		Status: types.ExpirationStatusEnabled,
		Filter: &types.LifecycleRuleFilter{
			Prefix: aws.String(prefix),
		},
		Expiration: &types.LifecycleExpiration{
			Days: aws.Int32(days),
		},
	}
}

func TestMergeLifecycleRulesKeepsForeignRules(t *testing.T) {
	existing := []types.LifecycleRule{
		expiryRule("tmp-cleanup", "tmp/", 7),
		expiryRule("logs-expiry", "logs/", 30),
	}

	merged := mergeLifecycleRules(existing, expiryRule(trashLifecycleRuleID, "trash/", 1))
	if len(merged) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(merged))
	}
	if aws.ToString(merged[0].ID) != "tmp-cleanup" || aws.ToString(merged[1].ID) != "logs-expiry" {
		t.Fatalf("foreign rules reordered or dropped: %v, %v",
			aws.ToString(merged[0].ID), aws.ToString(merged[1].ID))
	}
	if aws.ToString(merged[2].ID) != trashLifecycleRuleID {
		t.Fatalf("trash rule missing from merged set")
	}
}

func TestMergeLifecycleRulesReplacesOwnRule(t *testing.T) {
	existing := []types.LifecycleRule{
		expiryRule("logs-expiry", "logs/", 30),
		expiryRule(trashLifecycleRuleID, "trash/", 7),
	}

	merged := mergeLifecycleRules(existing, expiryRule(trashLifecycleRuleID, "trash/", 1))
	if len(merged) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(merged))
	}
	var days int32
	for _, r := range merged {
		if aws.ToString(r.ID) == trashLifecycleRuleID {
			days = aws.ToInt32(r.Expiration.Days)
		}
	}
	if days != 1 {
		t.Fatalf("stale trash rule survived the merge: %d days", days)
	}
}

func TestMergeLifecycleRulesFromEmpty(t *testing.T) {
	merged := mergeLifecycleRules(nil, expiryRule(trashLifecycleRuleID, "trash/", 1))
	if len(merged) != 1 || aws.ToString(merged[0].ID) != trashLifecycleRuleID {
		t.Fatalf("unexpected merge result: %v", merged)
	}
}
