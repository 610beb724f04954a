package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}

func TestRecorders(t *testing.T) {
	RecordTransfer("BUY", "SCHEDULED")
	RecordRejection("wallet_limit_exceeded")
	RecordTax("marketing", uint256.NewInt(250))
	RecordPolicyChange("LAUNCH")
	RecordSwapBack()
	UpdatePendingFees(uint256.NewInt(130))
	UpdateLaunched(true)

	body := scrape(t)
	assert.Contains(t, body, `taxledger_ledger_transfers_total{direction="BUY",regime="SCHEDULED"}`)
	assert.Contains(t, body, `taxledger_ledger_rejections_total{reason="wallet_limit_exceeded"}`)
	assert.Contains(t, body, `taxledger_tax_collected_base_units_total{component="marketing"}`)
	assert.Contains(t, body, `taxledger_policy_changes_total{kind="LAUNCH"}`)
	assert.Contains(t, body, "taxledger_tax_pending_fees_base_units 130")
	assert.Contains(t, body, "taxledger_ledger_launched 1")

	UpdateLaunched(false)
	assert.Contains(t, scrape(t), "taxledger_ledger_launched 0")
}

func TestToFloat(t *testing.T) {
	assert.Equal(t, 1e18, toFloat(uint256.MustFromDecimal("1000000000000000000")))
	assert.Equal(t, 0.0, toFloat(new(uint256.Int)))
}
