package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/injurylens/internal/store"
)

const injuriesCSV = `trmt_date,age,sex,race,body_part,diag,location,prod,weight,narrative
2017-01-03,71,male,white,Head,Internal Organ Injury,Home,1807,74.74,71YOM FELL ON ICE HIT HEAD
2017-01-05,0.583,female,black,Face,Contusion,Home,4076,77.33,7MOF ROLLED OFF COUCH
2017-01-09,,female,white,Lower Trunk,Strain,Unknown,1842,,BACK PAIN
`

func TestParseInjuries(t *testing.T) {
	t.Run("typed columns", func(t *testing.T) {
		in := strings.Join(strings.Split(injuriesCSV, "\n")[:3], "\n") + "\n"
		records, err := ParseInjuries(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, records, 2)

		first := records[0]
		assert.Equal(t, time.Date(2017, 1, 3, 0, 0, 0, 0, time.UTC), first.TreatmentDate)
		assert.Equal(t, 71, first.Age)
		assert.Equal(t, store.SexMale, first.Sex)
		assert.Equal(t, "Head", first.BodyPart)
		assert.Equal(t, "Internal Organ Injury", first.Diagnosis)
		assert.Equal(t, 1807, first.ProductCode)
		assert.InDelta(t, 74.74, first.Weight, 1e-9)

		assert.Equal(t, 0, records[1].Age, "infant fractional ages truncate to whole years")
	})

	t.Run("missing weight is rejected", func(t *testing.T) {
		_, err := ParseInjuries(strings.NewReader(injuriesCSV))
		require.Error(t, err)
		assert.ErrorContains(t, err, "bad weight")
	})

	t.Run("missing age is a defined absence", func(t *testing.T) {
		in := `trmt_date,age,sex,race,body_part,diag,location,prod,weight,narrative
2017-01-09,,female,white,Lower Trunk,Strain,Unknown,1842,12.1,BACK PAIN
`
		records, err := ParseInjuries(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, store.AgeUnknown, records[0].Age)
	})

	t.Run("missing required column", func(t *testing.T) {
		_, err := ParseInjuries(strings.NewReader("age,sex\n1,male\n"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "missing required column")
	})
}

func TestParseProducts(t *testing.T) {
	in := `code,title
1807,"floors or flooring materials"
4076,"beds or bedframes"
`
	products, err := ParseProducts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, store.Product{Code: 1807, Title: "floors or flooring materials"}, products[0])
}

func TestParsePopulation(t *testing.T) {
	in := `age,sex,n
0,female,1924145
0,male,2015234
80,male,1073696
`
	counts, err := ParsePopulation(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, store.PopulationCount{Age: 0, Sex: store.SexFemale, Population: 1924145}, counts[0])

	t.Run("nonpositive count is rejected", func(t *testing.T) {
		_, err := ParsePopulation(strings.NewReader("age,sex,n\n3,male,0\n"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "bad count")
	})
}
