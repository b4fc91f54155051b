package mock

import (
	"testing"
	"time"

	"github.com/frothhq/affogato"
	"github.com/stretchr/testify/assert"
)

const defaultTestTimeout = 30 * time.Second

func TestInterfaces(t *testing.T) {
	assert.Implements(t, (*affogato.SecretManagerClient)(nil), &SecretManagerClient{})
}
