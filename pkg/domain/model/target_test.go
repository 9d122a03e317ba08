package model_test

import (
	"testing"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestTestPathFor(t *testing.T) {
	tests := []struct {
		source string
		test   string
	}{
		{source: "calc.py", test: "calc_test.py"},
		{source: "/sandbox/pkg/calc.py", test: "/sandbox/pkg/calc_test.py"},
		{source: "/sandbox/my.module.py", test: "/sandbox/my.module_test.py"},
		{source: "/sandbox/py.dir/app.py", test: "/sandbox/py.dir/app_test.py"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := model.TestPathFor(tt.source)
			gt.Value(t, got).Equal(tt.test)
			gt.B(t, model.IsTestFile(got)).True()

			back, ok := model.SourcePathFor(got)
			gt.B(t, ok).True()
			gt.Value(t, back).Equal(tt.source)
		})
	}
}

func TestSourcePathFor_NotATestFile(t *testing.T) {
	_, ok := model.SourcePathFor("/sandbox/calc.py")
	gt.B(t, ok).False()
}

func TestIsEligible(t *testing.T) {
	gt.B(t, model.IsEligible("calc.py")).True()
	gt.B(t, model.IsEligible("test.py")).True()
	gt.B(t, model.IsEligible("calc_test.py")).False()
	gt.B(t, model.IsEligible("notes.txt")).False()
	gt.B(t, model.IsEligible("calc.pyc")).False()
}

func TestNewTargetFile(t *testing.T) {
	target := model.NewTargetFile("/sandbox/math_utils.py")
	gt.Value(t, target.ModuleName).Equal("math_utils")
	gt.Value(t, target.TestPath).Equal("/sandbox/math_utils_test.py")
}
