package mirror

import (
	"os"
	"testing"

	"pharmacy-store/internal/util"
)

func TestMain(m *testing.M) {
	if err := util.InitLogger("test"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
