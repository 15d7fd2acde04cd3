package valueobjects

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "mathtree-backend/pkg/errors"
)

// DivisionScale bounds the number of fractional digits a divide result
// keeps, so chained derivations stay on a stable fixed-point scale.
const DivisionScale = 10

// Operation is a value object naming the arithmetic step that derives a
// child node's value from its parent's value and an operand.
type Operation string

const (
	OperationAdd      Operation = "add"
	OperationSubtract Operation = "subtract"
	OperationMultiply Operation = "multiply"
	OperationDivide   Operation = "divide"
)

// Operations lists every valid operation tag.
var Operations = []Operation{OperationAdd, OperationSubtract, OperationMultiply, OperationDivide}

// ParseOperation validates a raw operation tag
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OperationAdd, OperationSubtract, OperationMultiply, OperationDivide:
		return Operation(s), nil
	}
	return "", pkgerrors.NewInvalidOperationError(fmt.Sprintf("unknown operation %q", s))
}

// Apply computes the value derived from parentValue. Division by zero is
// rejected with an InvalidOperation error, as is any tag that did not come
// through ParseOperation.
func (o Operation) Apply(parentValue, operand decimal.Decimal) (decimal.Decimal, error) {
	switch o {
	case OperationAdd:
		return parentValue.Add(operand), nil
	case OperationSubtract:
		return parentValue.Sub(operand), nil
	case OperationMultiply:
		return parentValue.Mul(operand), nil
	case OperationDivide:
		if operand.IsZero() {
			return decimal.Decimal{}, pkgerrors.NewInvalidOperationError("division by zero")
		}
		return parentValue.DivRound(operand, DivisionScale), nil
	default:
		return decimal.Decimal{}, pkgerrors.NewInvalidOperationError(fmt.Sprintf("unknown operation %q", string(o)))
	}
}

// String returns the operation tag
func (o Operation) String() string {
	return string(o)
}
