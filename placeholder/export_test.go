package placeholder

// ScanForTest exposes scan.
var ScanForTest = scan
