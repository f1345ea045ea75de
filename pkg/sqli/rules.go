package sqli

import (
	"regexp"

	"github.com/webprobe/webprobe/pkg/regexcache"
)

// DBMS is a database family recognised from error text.
type DBMS string

const (
	DBMSMySQL      DBMS = "mysql"
	DBMSPostgreSQL DBMS = "postgresql"
	DBMSMSSQL      DBMS = "mssql"
	DBMSOracle     DBMS = "oracle"
)

// Rule pairs a database family with a case-insensitive error pattern.
type Rule struct {
	DBMS    DBMS
	Pattern *regexp.Regexp
}

// DefaultRules returns the fingerprint rules in match order. The first
// matching rule decides the reported family.
func DefaultRules() []Rule {
	return []Rule{
		{DBMSMySQL, regexcache.MustGetFold(`SQL syntax.*MySQL`)},
		{DBMSMySQL, regexcache.MustGetFold(`Warning.*mysql_.*`)},
		{DBMSMySQL, regexcache.MustGetFold(`MySQLSyntaxErrorException`)},
		{DBMSMySQL, regexcache.MustGetFold(`valid MySQL result`)},
		{DBMSPostgreSQL, regexcache.MustGetFold(`PostgreSQL.*ERROR`)},
		{DBMSPostgreSQL, regexcache.MustGetFold(`Warning.*\Wpg_.*`)},
		{DBMSPostgreSQL, regexcache.MustGetFold(`valid PostgreSQL result`)},
		{DBMSMSSQL, regexcache.MustGetFold(`Microsoft OLE DB Provider for ODBC Drivers`)},
		{DBMSMSSQL, regexcache.MustGetFold(`ODBC SQL Server Driver`)},
		{DBMSMSSQL, regexcache.MustGetFold(`SQLServer JDBC Driver`)},
		{DBMSOracle, regexcache.MustGetFold(`ORA-[0-9][0-9][0-9][0-9]`)},
		{DBMSOracle, regexcache.MustGetFold(`Oracle error`)},
		{DBMSOracle, regexcache.MustGetFold(`Oracle.*Driver`)},
	}
}

// Fingerprint returns the family of the first rule matching body.
func Fingerprint(rules []Rule, body string) (DBMS, bool) {
	for _, r := range rules {
		if r.Pattern.MatchString(body) {
			return r.DBMS, true
		}
	}
	return "", false
}

// Keywords are the words counted by the keyword heuristic.
func Keywords() []string {
	return []string{"mysql", "sql", "database", "query", "syntax"}
}
