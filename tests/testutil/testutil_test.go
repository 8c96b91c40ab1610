package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	assert.NotNil(t, mockDB.SqlDB)

	// Fresh mock with no expectations is already satisfied.
	mockDB.ExpectationsWereMet(t)
}

func TestTestContextSetters(t *testing.T) {
	tc := NewTestContext(t)

	require.NotNil(t, tc.Context)
	require.NotNil(t, tc.Recorder)
	require.NotNil(t, tc.Engine)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetRequestID("req-allocation-42")
	tc.SetTenantID("tenant-acme-water")
	tc.SetUserID("user-cashier-7")
	tc.SetHeader("Authorization", "Bearer test-token")

	for key, want := range map[string]string{
		"X-Request-ID": "req-allocation-42",
		"X-Tenant-ID":  "tenant-acme-water",
		"X-User-ID":    "user-cashier-7",
	} {
		val, exists := tc.Context.Get(key)
		assert.True(t, exists, key)
		assert.Equal(t, want, val)
	}
	assert.Equal(t, "Bearer test-token", tc.Context.Request.Header.Get("Authorization"))
}

func TestTestContextResponse(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusCreated, gin.H{"receipt_number": "RCT-20260827-00001"})

	assert.Equal(t, http.StatusCreated, tc.ResponseCode())
	assert.Contains(t, string(tc.ResponseBody()), "RCT-20260827-00001")
}

func TestDeterministicUUIDs(t *testing.T) {
	assert.Equal(t, NewTestUUID("payment-1"), NewTestUUID("payment-1"))
	assert.NotEqual(t, NewTestUUID("payment-1"), NewTestUUID("payment-2"))

	assert.NotEqual(t, NewRandomUUID(), NewRandomUUID())

	assert.Equal(t, TestTenantID(), TestTenantID())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", TestTenantID().String())

	assert.Equal(t, TestUserID(), TestUserID())
	assert.NotEqual(t, TestTenantID(), TestUserID())
}

func TestContextHelpers(t *testing.T) {
	ctx, cancel := ContextWithTimeout(t, 100*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.True(t, deadline.After(time.Now()))

	cctx, ccancel := ContextWithCancel(t)
	select {
	case <-cctx.Done():
		t.Fatal("context cancelled too early")
	default:
	}

	ccancel()

	select {
	case <-cctx.Done():
	default:
		t.Fatal("context not cancelled")
	}
}

func TestAssertEventually(t *testing.T) {
	receipted := false
	go func() {
		time.Sleep(50 * time.Millisecond)
		receipted = true
	}()

	AssertEventually(t, func() bool {
		return receipted
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestAssertNever(t *testing.T) {
	doubleApplied := false

	AssertNever(t, func() bool {
		return doubleApplied
	}, 50*time.Millisecond, 10*time.Millisecond)
}

func TestRunHTTPTestCase(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"receipt_number": "RCT-20260827-00001"},
		})
	}

	RunHTTPTestCase(t, handler, HTTPTestCase{
		Name:           "receipt lookup",
		Method:         http.MethodGet,
		Path:           "/receipts/RCT-20260827-00001",
		ExpectedStatus: http.StatusOK,
		ExpectedBody: map[string]any{
			"success": true,
		},
	})
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	}

	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{Name: "first call", ExpectedStatus: http.StatusOK},
		{Name: "second call", ExpectedStatus: http.StatusOK},
	})
}

func TestJSONResponseHelpers(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"success": true, "receipt_number": "RCT-20260827-00002"})

	resp := JSONResponse(t, tc)
	assert.Equal(t, "RCT-20260827-00002", resp["receipt_number"])

	type receiptBody struct {
		ReceiptNumber string `json:"receipt_number"`
	}
	typed := JSONResponseAs[receiptBody](t, tc)
	assert.Equal(t, "RCT-20260827-00002", typed.ReceiptNumber)

	AssertSuccessResponse(t, tc)
}

func TestToJSONReader(t *testing.T) {
	reader := ToJSONReader(t, map[string]string{"amount": "120.50"})
	require.NotNil(t, reader)
}
