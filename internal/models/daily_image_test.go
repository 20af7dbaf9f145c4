package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestDailyImageSchema_FoodCombinationUnbounded(t *testing.T) {
	s, err := schema.Parse(&DailyImage{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	f := s.LookUpField("food_combination")
	require.NotNil(t, f)
	assert.Equal(t, schema.DataType("text"), f.DataType)
	assert.Zero(t, f.Size)
}
