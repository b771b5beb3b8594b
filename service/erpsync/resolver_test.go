package erpsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plmsync.GO/client/cin7"
	"plmsync.GO/core/syncerr"
	"plmsync.GO/service/rules"
)

func TestEnsureExists_CreatesComponentsBeforeParents(t *testing.T) {
	src := newFakeSource()
	src.add("A")
	src.add("B")
	src.add("C")
	src.bom("A", "B")
	src.bom("B", "C")
	dst := newFakeTarget()
	e, _ := newTestEngine(t, src, dst)

	id, warns, err := e.EnsureExists(context.Background(), "A")
	require.NoError(t, err)
	assert.Empty(t, warns)
	assert.NotEmpty(t, id)
	assert.Equal(t, []string{"C", "B", "A"}, dst.upserts)

	a := dst.products["A"]
	require.Len(t, a.BillOfMaterialsProducts, 1)
	assert.Equal(t, dst.products["B"].ID, a.BillOfMaterialsProducts[0].ComponentProductID)
	assert.True(t, a.BillOfMaterial)
	assert.Equal(t, a.BillOfMaterialsProducts, dst.boms[a.ID])
	assert.False(t, dst.products["C"].BillOfMaterial)
}

func TestEnsureExists_ExistingProductIsTerminal(t *testing.T) {
	src := newFakeSource()
	dst := newFakeTarget()
	want := dst.seed("A")
	e, _ := newTestEngine(t, src, dst)

	id, _, err := e.EnsureExists(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, want, id)
	assert.Empty(t, dst.upserts)
	assert.Zero(t, src.bomCalls)
}

func TestEnsureExists_NotFoundAnywhere(t *testing.T) {
	e, _ := newTestEngine(t, newFakeSource(), newFakeTarget())
	_, _, err := e.EnsureExists(context.Background(), "GHOST")
	assert.True(t, errors.Is(err, syncerr.ErrNotFound), "err = %v", err)
}

func TestEnsureExists_CycleTerminates(t *testing.T) {
	src := newFakeSource()
	src.add("A")
	src.add("B")
	src.bom("A", "B")
	src.bom("B", "A")
	dst := newFakeTarget()
	e, _ := newTestEngine(t, src, dst)

	_, warns, err := e.EnsureExists(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, dst.upserts)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "A -> B -> A")

	b := dst.products["B"]
	require.Len(t, b.BillOfMaterialsProducts, 1)
	assert.Equal(t, "A", b.BillOfMaterialsProducts[0].ProductCode)
	assert.Empty(t, b.BillOfMaterialsProducts[0].ComponentProductID)
}

func TestEnsureExists_DiamondIsNotACycle(t *testing.T) {
	src := newFakeSource()
	for _, n := range []string{"TOP", "L", "R", "SHARED"} {
		src.add(n)
	}
	src.bom("TOP", "L", "R")
	src.bom("L", "SHARED")
	src.bom("R", "SHARED")
	dst := newFakeTarget()
	e, _ := newTestEngine(t, src, dst)

	_, warns, err := e.EnsureExists(context.Background(), "TOP")
	require.NoError(t, err)
	assert.Empty(t, warns)
	// The second parent finds SHARED already created.
	assert.Equal(t, []string{"SHARED", "L", "R", "TOP"}, dst.upserts)
}

func TestEnsureExists_PrefersLocalStore(t *testing.T) {
	src := newFakeSource()
	it := src.add("A")
	dst := newFakeTarget()
	e, db := newTestEngine(t, src, dst)

	local := localItem(t, it)
	local.Name = "Harvested name"
	require.NoError(t, db.Create(&local).Error)
	delete(src.items, "A")

	_, _, err := e.EnsureExists(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "Harvested name", dst.products["A"].Name)
}

func TestEnsureExists_BOMUploadFailureIsWarning(t *testing.T) {
	src := newFakeSource()
	src.add("A")
	src.add("B")
	src.bom("A", "B")
	dst := newFakeTarget()
	dst.bomFail = true
	e, _ := newTestEngine(t, src, dst)

	id, warns, err := e.EnsureExists(context.Background(), "A")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "component not stocked")
}

func TestEnsureExists_AssemblyBOMDisabled(t *testing.T) {
	src := newFakeSource()
	src.add("A")
	src.add("B")
	src.bom("A", "B")
	dst := newFakeTarget()
	e, _ := newTestEngine(t, src, dst, WithRules(rules.Static{rules.KeyAssemblyBOM: "No"}))

	_, _, err := e.EnsureExists(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, dst.upserts)
	assert.Zero(t, src.bomCalls)
	assert.False(t, dst.products["A"].BillOfMaterial)
	assert.Zero(t, dst.bomUploads)
}

func TestEnsureExists_RejectedUpsert(t *testing.T) {
	src := newFakeSource()
	src.add("A")
	dst := newFakeTarget()
	dst.reject["A"] = "Category is invalid"
	e, _ := newTestEngine(t, src, dst)

	id, _, err := e.EnsureExists(context.Background(), "A")
	assert.Equal(t, cin7.ProductID(""), id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, syncerr.ErrValidation))
	assert.Contains(t, err.Error(), "Category is invalid")
}

func TestEnsureExists_NoProductIDSkipsBOMUpload(t *testing.T) {
	src := newFakeSource()
	src.add("A")
	src.add("B")
	src.bom("A", "B")
	dst := newFakeTarget()
	dst.noID = true
	e, _ := newTestEngine(t, src, dst)

	id, warns, err := e.EnsureExists(context.Background(), "A")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Zero(t, dst.bomUploads)
	require.NotEmpty(t, warns)
	assert.Contains(t, warns[len(warns)-1], "no product id returned for A")
}
