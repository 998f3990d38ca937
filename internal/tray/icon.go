package tray

// iconData is the embedded 16x16 tray icon (PNG).
var iconData = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x41, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0xa0, 0x05, 0x48,
	0x48, 0x48, 0xf8, 0x8f, 0x0d, 0x53, 0xa4, 0x99, 0x28, 0x43, 0x90, 0x15,
	0x2a, 0x28, 0x28, 0xa0, 0x60, 0x82, 0x86, 0xe0, 0xd2, 0x88, 0xcb, 0x20,
	0xa2, 0x6d, 0x26, 0xca, 0x25, 0xc4, 0x6a, 0xc6, 0xe9, 0x8a, 0x61, 0x64,
	0x00, 0xd9, 0x81, 0x48, 0x71, 0x34, 0x52, 0x25, 0x21, 0x51, 0x25, 0x29,
	0x53, 0x25, 0x33, 0x91, 0x0a, 0x00, 0xb4, 0x05, 0x0e, 0xf4, 0x5f, 0xc7,
	0x5e, 0x65, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42,
	0x60, 0x82,
}
