package engine

import (
	"testing"

	"housecare-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_EmptyHouse(t *testing.T) {
	e := NewDefault()

	// 零部件不是错误：未知但不扣分（建龄/结构调整照常生效）
	result, err := e.Aggregate(nil, HouseContext{StructureType: domain.StructureUnknown}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 100, result.OverallScore)
	assert.Empty(t, result.CategoryScores)
	assert.Equal(t, 0, result.AgeDeduction)
	assert.Equal(t, 0, result.StructureBonus)
}

func TestAggregate_AgeAndStructureAdjustments(t *testing.T) {
	e := NewDefault()

	// 场景C：建龄30年、木造、单个部件得分80
	// base=80, ageDeduction=min(20, 3*2)=6, wood=-3 -> 71
	builtYear := testNow.Year() - 30
	comps := []*domain.Component{
		{
			Category:           domain.CategoryExteriorWall,
			ConditionScore:     intp(80),
			LastInspectionDate: timep(testNow.AddDate(0, -1, 0)),
		},
	}
	result, err := e.Aggregate(comps, HouseContext{
		BuiltYear:     &builtYear,
		StructureType: domain.StructureWood,
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 80, result.CategoryScores[domain.CategoryExteriorWall])
	assert.Equal(t, 6, result.AgeDeduction)
	assert.Equal(t, -3, result.StructureBonus)
	assert.Equal(t, 71, result.OverallScore)

	// RC 结构 +5
	result, err = e.Aggregate(comps, HouseContext{
		BuiltYear:     &builtYear,
		StructureType: domain.StructureRC,
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 5, result.StructureBonus)
	assert.Equal(t, 79, result.OverallScore)

	// 建龄扣分封顶 20
	oldYear := testNow.Year() - 150
	result, err = e.Aggregate(comps, HouseContext{
		BuiltYear:     &oldYear,
		StructureType: domain.StructureSteel,
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 20, result.AgeDeduction)
	assert.Equal(t, 60, result.OverallScore)
}

func TestAggregate_CategoryMeansAndAbsentCategories(t *testing.T) {
	e := NewDefault()

	recent := timep(testNow.AddDate(0, -1, 0))
	comps := []*domain.Component{
		{Category: domain.CategoryRoof, ConditionScore: intp(90), LastInspectionDate: recent},
		{Category: domain.CategoryRoof, ConditionScore: intp(81), LastInspectionDate: recent},
		{Category: domain.CategoryPlumbing, ConditionScore: intp(60), LastInspectionDate: recent},
	}
	result, err := e.Aggregate(comps, HouseContext{StructureType: domain.StructureUnknown}, testNow)
	require.NoError(t, err)

	// roof = round((90+81)/2) = 86
	assert.Equal(t, 86, result.CategoryScores[domain.CategoryRoof])
	assert.Equal(t, 60, result.CategoryScores[domain.CategoryPlumbing])

	// 场景E：没有部件的类别不出现在 categoryScores，也不拉低平均
	_, hasElectrical := result.CategoryScores[domain.CategoryElectrical]
	assert.False(t, hasElectrical)
	assert.Len(t, result.CategoryScores, 2)

	// overall = round((86+60)/2) = 73
	assert.Equal(t, 73, result.OverallScore)
}

func TestAggregate_InvalidEnumsFailFast(t *testing.T) {
	e := NewDefault()

	_, err := e.Aggregate(nil, HouseContext{StructureType: "brick"}, testNow)
	assert.Error(t, err)

	comps := []*domain.Component{{ComponentID: "c1", Category: "chimney"}}
	_, err = e.Aggregate(comps, HouseContext{StructureType: domain.StructureWood}, testNow)
	assert.Error(t, err)
}

func TestRecompute_Deterministic(t *testing.T) {
	e := NewDefault()

	builtYear := 1995
	house := &domain.House{
		HouseID:       "h1",
		BuiltYear:     &builtYear,
		StructureType: domain.StructureWood,
	}
	comps := []*domain.Component{
		{
			ComponentID:           "c1",
			Category:              domain.CategoryRoof,
			ConditionScore:        intp(55),
			InstalledDate:         yearsAgo(10),
			ExpectedLifespanYears: f64p(20),
			LastInspectionDate:    timep(testNow.AddDate(-3, 0, 0)),
		},
		{ComponentID: "c2", Category: domain.CategoryElectrical, ConditionScore: intp(88)},
	}

	first, err := e.Recompute(house, comps, testNow)
	require.NoError(t, err)
	second, err := e.Recompute(house, comps, testNow)
	require.NoError(t, err)

	// 相同输入（含 now）产出完全相同的结果
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first.OverallScore, 0)
	assert.LessOrEqual(t, first.OverallScore, 100)
	for _, s := range first.CategoryScores {
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
	}
	assert.NotEmpty(t, first.Recommendations)
}
