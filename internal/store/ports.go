package store

var defaultPorts = []Port{
	{Code: "KRPUS", Name: "부산항", CountryCode: "KR", PortType: "SEA"},
	{Code: "KRINC", Name: "인천항", CountryCode: "KR", PortType: "SEA"},
	{Code: "KRKAN", Name: "광양항", CountryCode: "KR", PortType: "SEA"},
	{Code: "KRULN", Name: "울산항", CountryCode: "KR", PortType: "SEA"},
	{Code: "CNSHA", Name: "상하이항", CountryCode: "CN", PortType: "SEA"},
	{Code: "CNNGB", Name: "닝보항", CountryCode: "CN", PortType: "SEA"},
	{Code: "CNTAO", Name: "칭다오항", CountryCode: "CN", PortType: "SEA"},
	{Code: "CNSZX", Name: "심천항", CountryCode: "CN", PortType: "SEA"},
	{Code: "HKHKG", Name: "홍콩항", CountryCode: "HK", PortType: "SEA"},
	{Code: "SGSIN", Name: "싱가포르항", CountryCode: "SG", PortType: "SEA"},
	{Code: "JPTYO", Name: "도쿄항", CountryCode: "JP", PortType: "SEA"},
	{Code: "JPYOK", Name: "요코하마항", CountryCode: "JP", PortType: "SEA"},
	{Code: "JPOSA", Name: "오사카항", CountryCode: "JP", PortType: "SEA"},
	{Code: "JPKOB", Name: "고베항", CountryCode: "JP", PortType: "SEA"},
	{Code: "USLAX", Name: "LA항", CountryCode: "US", PortType: "SEA"},
	{Code: "USLGB", Name: "롱비치항", CountryCode: "US", PortType: "SEA"},
	{Code: "USNYC", Name: "뉴욕항", CountryCode: "US", PortType: "SEA"},
	{Code: "USHOU", Name: "휴스턴항", CountryCode: "US", PortType: "SEA"},
	{Code: "USSEA", Name: "시애틀항", CountryCode: "US", PortType: "SEA"},
	{Code: "DEHAM", Name: "함부르크항", CountryCode: "DE", PortType: "SEA"},
	{Code: "NLRTM", Name: "로테르담항", CountryCode: "NL", PortType: "SEA"},
	{Code: "BEANR", Name: "앤트워프항", CountryCode: "BE", PortType: "SEA"},
	{Code: "GBFXT", Name: "펠릭스토우항", CountryCode: "GB", PortType: "SEA"},
	{Code: "FRLEH", Name: "르아브르항", CountryCode: "FR", PortType: "SEA"},
	{Code: "VNSGN", Name: "호치민항", CountryCode: "VN", PortType: "SEA"},
	{Code: "VNHPH", Name: "하이퐁항", CountryCode: "VN", PortType: "SEA"},
	{Code: "THLCH", Name: "램차방항", CountryCode: "TH", PortType: "SEA"},
	{Code: "MYTPP", Name: "탄중펠레파스항", CountryCode: "MY", PortType: "SEA"},
	{Code: "IDTPP", Name: "탄중프리옥항", CountryCode: "ID", PortType: "SEA"},
	{Code: "PHMNL", Name: "마닐라항", CountryCode: "PH", PortType: "SEA"},
}

// DefaultPorts returns a copy of the built-in port list used when the ports
// table is unavailable.
func DefaultPorts() []Port {
	out := make([]Port, len(defaultPorts))
	copy(out, defaultPorts)
	return out
}
