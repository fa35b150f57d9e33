package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestAssetAssign(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	customerID := node.Generate()
	now := time.Now().UTC()

	t.Run("AvailableToAssigned", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusAvailable}
		err := asset.Assign(customerID, AssetTypeONT, now)
		assert.NoError(t, err)
		assert.Equal(t, AssetStatusAssigned, asset.Status)
		assert.Equal(t, customerID, *asset.CustomerID)
		assert.Equal(t, now, *asset.AssignedAt)
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeRouter, Status: AssetStatusAvailable}
		err := asset.Assign(customerID, AssetTypeONT, now)
		assert.ErrorIs(t, err, ErrAssetTypeMismatch)
		assert.Equal(t, AssetStatusAvailable, asset.Status)
	})

	t.Run("NoExpectedTypeSkipsCheck", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeRouter, Status: AssetStatusAvailable}
		err := asset.Assign(customerID, "", now)
		assert.NoError(t, err)
		assert.Equal(t, AssetStatusAssigned, asset.Status)
	})

	t.Run("AlreadyAssigned", func(t *testing.T) {
		other := node.Generate()
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusAssigned, CustomerID: &other}
		err := asset.Assign(customerID, AssetTypeONT, now)
		assert.ErrorIs(t, err, ErrAssetNotAvailable)
		assert.Equal(t, other, *asset.CustomerID)
	})

	t.Run("Faulty", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusFaulty}
		err := asset.Assign(customerID, AssetTypeONT, now)
		assert.ErrorIs(t, err, ErrAssetNotAvailable)
	})

	t.Run("Retired", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusRetired}
		err := asset.Assign(customerID, AssetTypeONT, now)
		assert.ErrorIs(t, err, ErrAssetRetired)
	})
}

func TestAssetReclaim(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	customerID := node.Generate()
	now := time.Now().UTC()

	t.Run("AssignedToAvailable", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusAssigned, CustomerID: &customerID, AssignedAt: &now}
		err := asset.Reclaim()
		assert.NoError(t, err)
		assert.Equal(t, AssetStatusAvailable, asset.Status)
		assert.Nil(t, asset.CustomerID)
		assert.Nil(t, asset.AssignedAt)
	})

	t.Run("NotAssigned", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusAvailable}
		assert.ErrorIs(t, asset.Reclaim(), ErrAssetNotAssigned)
	})

	t.Run("Retired", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusRetired}
		assert.ErrorIs(t, asset.Reclaim(), ErrAssetRetired)
	})
}

func TestAssetMarkFaulty(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	customerID := node.Generate()

	t.Run("AssignedToFaulty", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusAssigned, CustomerID: &customerID}
		err := asset.MarkFaulty()
		assert.NoError(t, err)
		assert.Equal(t, AssetStatusFaulty, asset.Status)
		assert.Nil(t, asset.CustomerID)
	})

	t.Run("NotAssigned", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusAvailable}
		assert.ErrorIs(t, asset.MarkFaulty(), ErrAssetNotAssigned)
	})
}

func TestAssetRetire(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	customerID := node.Generate()

	t.Run("FromAssignedClearsBinding", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusAssigned, CustomerID: &customerID}
		err := asset.Retire("water damage")
		assert.NoError(t, err)
		assert.Equal(t, AssetStatusRetired, asset.Status)
		assert.Equal(t, "water damage", asset.RetireReason)
		assert.Nil(t, asset.CustomerID)
	})

	t.Run("Terminal", func(t *testing.T) {
		asset := Asset{ID: node.Generate(), AssetType: AssetTypeONT, Status: AssetStatusRetired}
		assert.ErrorIs(t, asset.Retire("again"), ErrAssetRetired)
	})
}

func TestAssetTypeValid(t *testing.T) {
	for _, typ := range []AssetType{AssetTypeONT, AssetTypeRouter, AssetTypeSplitter, AssetTypeFDH, AssetTypeSwitch, AssetTypeCPE, AssetTypeFiberRoll} {
		assert.True(t, typ.Valid(), string(typ))
	}
	assert.False(t, AssetType("Modem").Valid())
	assert.False(t, AssetType("").Valid())
}
