package erpsync

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plmsync.GO/core/syncerr"
	"plmsync.GO/model/entity/plm"
)

func TestPushItems_DryRunNeverMutates(t *testing.T) {
	src := newFakeSource()
	var items []plm.SourceItem
	for i := 0; i < 25; i++ {
		items = append(items, localItem(t, src.add(fmt.Sprintf("06-%03d", i))))
	}
	src.add("SUB-1")
	src.add("SUB-2")
	src.bom("06-000", "SUB-1")
	src.bom("SUB-1", "SUB-2")
	dst := newFakeTarget()
	existing := dst.seed("SUB-2")
	src.bom("06-001", "SUB-2")
	e, _ := newTestEngine(t, src, dst)

	res, err := e.PushItems(context.Background(), items, true)
	require.NoError(t, err)
	assert.Zero(t, dst.mutations())
	assert.Equal(t, StatusMockSuccess, res.Status)
	assert.Equal(t, 25, res.Summary.Mocked)
	require.Len(t, res.Details, 25)

	first := res.Details[0]
	require.Equal(t, "06-000", first.SKU)
	require.NotNil(t, first.Payload)
	require.Len(t, first.Payload.BillOfMaterialsProducts, 1)
	assert.Equal(t, "SUB-1", first.Payload.BillOfMaterialsProducts[0].ProductCode)

	second := res.Details[1]
	require.NotNil(t, second.Payload)
	assert.Equal(t, existing, second.Payload.BillOfMaterialsProducts[0].ComponentProductID)
}

func TestPushItems_MissingComponentFallsBackToSKU(t *testing.T) {
	src := newFakeSource()
	parent := src.add("06-100")
	src.bom("06-100", "NOWHERE-1")
	dst := newFakeTarget()
	e, _ := newTestEngine(t, src, dst)

	res, err := e.PushItems(context.Background(), []plm.SourceItem{localItem(t, parent)}, false)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Summary.Success)

	p := dst.products["06-100"]
	require.Len(t, p.BillOfMaterialsProducts, 1)
	assert.Equal(t, "NOWHERE-1", p.BillOfMaterialsProducts[0].ProductCode)
	assert.Empty(t, p.BillOfMaterialsProducts[0].ComponentProductID)

	require.Len(t, res.Details, 1, "successes with warnings are reported")
	assert.Equal(t, OutcomeSuccess, res.Details[0].Outcome)
	assert.Contains(t, res.Details[0].Warnings[0], "NOWHERE-1")
}

func TestPushItems_IsolatesFailures(t *testing.T) {
	src := newFakeSource()
	good := localItem(t, src.add("06-001"))
	bad := localItem(t, src.add("06-002"))
	boom := localItem(t, src.add("06-003"))
	dst := newFakeTarget()
	dst.reject["06-002"] = "UOM is invalid"
	dst.panicOn = "06-003"
	e, _ := newTestEngine(t, src, dst)

	res, err := e.PushItems(context.Background(), []plm.SourceItem{good, bad, boom}, false)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, res.Status)
	assert.Equal(t, 1, res.Summary.Success)
	assert.Equal(t, 2, res.Summary.Failed)
	require.Len(t, res.Details, 2)
	assert.Equal(t, "06-002", res.Details[0].SKU)
	assert.Equal(t, "validation", res.Details[0].ErrorKind)
	assert.Contains(t, res.Details[0].Error, "UOM is invalid")
	assert.Equal(t, "panic", res.Details[1].ErrorKind)
	assert.Contains(t, dst.products, "06-001")
}

func TestPush_IdempotentUpsert(t *testing.T) {
	src := newFakeSource()
	it := src.add("06-001")
	dst := newFakeTarget()
	e, db := newTestEngine(t, src, dst)
	rec := localItem(t, it)
	require.NoError(t, db.Create(&rec).Error)

	first, err := e.Push(context.Background(), PushOptions{})
	require.NoError(t, err)
	id := dst.products["06-001"].ID

	second, err := e.Push(context.Background(), PushOptions{Prefix: "06-"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Summary.Success)
	assert.Equal(t, 1, second.Summary.Success)
	assert.Len(t, dst.products, 1)
	assert.Equal(t, id, dst.products["06-001"].ID)
}

func TestPush_PrefixFilter(t *testing.T) {
	src := newFakeSource()
	dst := newFakeTarget()
	e, db := newTestEngine(t, src, dst)
	for _, n := range []string{"06-001", "07-001"} {
		rec := localItem(t, src.add(n))
		require.NoError(t, db.Create(&rec).Error)
	}

	res, err := e.Push(context.Background(), PushOptions{Prefix: "07-"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Success)
	assert.Equal(t, []string{"07-001"}, dst.upserts)
}

func TestPushItems_RejectedLoginAbortsPass(t *testing.T) {
	src := newFakeSource()
	var items []plm.SourceItem
	for i := 0; i < 20; i++ {
		items = append(items, localItem(t, src.add(fmt.Sprintf("06-%03d", i))))
	}
	dst := newFakeTarget()
	dst.authErr = fmt.Errorf("PUT /Products: %w", syncerr.ErrAuthentication)
	e, _ := newTestEngine(t, src, dst, WithWorkers(1))

	res, err := e.PushItems(context.Background(), items, false)
	require.ErrorIs(t, err, syncerr.ErrAuthentication)
	require.NotNil(t, res)
	assert.Equal(t, StatusError, res.Status)
	assert.Len(t, dst.upserts, 1, "items after the rejected login are not attempted")
	assert.Equal(t, 1, res.Summary.Failed)
	assert.Equal(t, "authentication", res.Details[0].ErrorKind)
}

func TestPushItems_RejectedLoginInComponentFailsParent(t *testing.T) {
	src := newFakeSource()
	parent := src.add("06-200")
	src.add("SUB-9")
	src.bom("06-200", "SUB-9")
	dst := newFakeTarget()
	dst.authErr = fmt.Errorf("PUT /Products: %w", syncerr.ErrAuthentication)
	e, _ := newTestEngine(t, src, dst)

	_, err := e.PushItems(context.Background(), []plm.SourceItem{localItem(t, parent)}, false)
	require.ErrorIs(t, err, syncerr.ErrAuthentication)
	assert.Equal(t, []string{"SUB-9"}, dst.upserts, "parent must not be written after the component login failed")
}
