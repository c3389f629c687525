package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerFor_IsTotal(t *testing.T) {
	for _, k := range Kinds() {
		assert.NotNil(t, handlerFor(k), "kind %s has no handler", k)
	}
}

func TestHandlerFor_OutsideCatalogueIsNil(t *testing.T) {
	assert.Nil(t, handlerFor(kindCount))
}

func TestKind_StringNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range Kinds() {
		name := k.String()
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
	assert.Equal(t, "Kind(-1)", Kind(-1).String())
}

func TestDispatch_UnhandledKindContinues(t *testing.T) {
	d := &Dispatcher{}
	var buf Buffer
	cont, err := d.Dispatch(Event{Type: "response.completed"}, &buf)
	assert.NoError(t, err)
	assert.True(t, cont)
}
