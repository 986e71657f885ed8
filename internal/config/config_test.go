package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAllocatesBeforeDecode(t *testing.T) {
	config = nil

	// 测试工作目录没有配置文件，解码失败但不能 panic，引擎参数落默认值
	_ = LoadConfig()
	require.NotNil(t, config)
	assert.Equal(t, float64(100), config.EngineConfig.ExactTitleBoost)
}

func TestEngineDefaults(t *testing.T) {
	ec := &EngineConfig{TopContent: 5}
	applyEngineDefaults(ec)

	// 显式配置的值保留
	assert.Equal(t, 5, ec.TopContent)
	assert.Equal(t, 20, ec.TopKRetrieve)
	assert.Equal(t, 3, ec.TopQA)
	assert.Equal(t, float64(3), ec.TypeMatchBoost)
	assert.Equal(t, float64(30), ec.GroupTypeBoost)
	assert.Equal(t, float64(10), ec.ContainsTitleBoost)
	assert.Equal(t, float64(50), ec.PurchaseContinuityBoost)
	assert.Equal(t, float64(1000), ec.QAScoreCap)
	assert.Equal(t, 32000, ec.SparseMaxTerms)
}
