package admin

import (
	"os"
	"testing"

	"pharmacy-store/internal/util"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	if err := util.InitLogger("test"); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
