package mysql

import (
	"net"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/duckgate/internal/database"
)

// buildDSN renders cfg through mysql.Config. The driver parses DSNs from
// the right, so passwords may contain '@', '/' and '?'.
func buildDSN(cfg *database.Config) string {
	port := cfg.Port
	if port == 0 {
		port = database.DriverMySQL.DefaultPort()
	}

	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = false // temporal columns surface as text
	mc.Timeout = cfg.ConnectTimeout
	mc.Loc = time.UTC
	if cfg.SSLMode != "" && cfg.SSLMode != "disable" {
		mc.TLSConfig = "preferred"
	}
	return mc.FormatDSN()
}
