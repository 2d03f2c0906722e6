// Package render holds the user-facing texts of the bot.
package render

const (
	// Welcome messages
	MsgWelcome = `👋 Halo! Saya asisten konsultasi hukum HukumKu.

Ceritakan masalah hukum Anda dengan bahasa sehari-hari. Saya akan:
• Mengajukan pertanyaan untuk memperjelas situasi Anda
• Memberikan analisis awal berdasarkan hukum Indonesia
• Menawarkan fitur lanjutan bila relevan

Kirim pesan untuk memulai, atau pilih paket langganan Anda di bawah.`

	// Tier selection
	MsgChooseTier = `💳 Pilih paket langganan Anda.

Paket menentukan fitur lanjutan mana yang dapat Anda gunakan.`

	MsgTierSet = `✅ Paket %s tersimpan. Silakan lanjutkan konsultasi Anda.`

	// Clarification flow
	MsgQuestionProgress = `❓ Pertanyaan %d dari %d:

%s`

	MsgQuestionOptionalHint = `(Pertanyaan ini opsional, tekan Lewati untuk melompat.)`

	MsgAnswerInvalid = `⚠️ %s

Silakan jawab sekali lagi.`

	MsgAnswersSubmitting = `📨 Semua pertanyaan terjawab. Mengirim jawaban Anda...`

	// Feature offerings
	MsgOfferings = `✨ Saya dapat membantu lebih jauh dengan fitur berikut:`

	MsgUpgradeRequired = `🔒 Fitur %s membutuhkan paket %s.

Tingkatkan paket Anda untuk menggunakannya. Paket saat ini: %s.`

	MsgFeatureRunning = `⏳ Menjalankan %s, mohon tunggu...`

	// Export
	MsgChooseExportFormat = `📄 Pilih format unduhan ringkasan konsultasi:`

	MsgNothingToExport = `Belum ada percakapan untuk diunduh. Mulai konsultasi terlebih dahulu.`

	// Reset
	MsgConfirmReset = `⚠️ Yakin ingin memulai ulang? Seluruh percakapan ini akan dihapus.`

	MsgResetDone = `🔄 Percakapan dihapus. Kirim pesan untuk memulai konsultasi baru.`

	MsgResetCancelled = `👍 Baik, konsultasi dilanjutkan.`

	// Processing
	MsgProcessing = `⏳ Sedang memproses, mohon tunggu...`

	// Help
	MsgHelp = `🤖 Perintah bot:

/start - Mulai atau lanjutkan konsultasi
/tier - Ubah paket langganan
/export - Unduh ringkasan konsultasi
/reset - Hapus percakapan dan mulai ulang
/help - Tampilkan bantuan ini

Cara kerja:
1. Ceritakan masalah hukum Anda
2. Jawab pertanyaan klarifikasi
3. Terima analisis awal
4. Gunakan fitur lanjutan bila ditawarkan`

	// Errors
	ErrGeneric = `❌ Terjadi kesalahan. Silakan coba lagi.`

	ErrRequestInFlight = `⏳ Permintaan sebelumnya masih diproses. Mohon tunggu sebentar.`

	ErrNetworkIssue = `📡 Gangguan koneksi ke layanan konsultasi. Pesan Anda tersimpan, coba kirim ulang.`

	ErrTimeout = `⌛ Permintaan memakan waktu terlalu lama. Silakan coba lagi.`

	ErrNoActiveChat = `Belum ada konsultasi aktif. Kirim pesan untuk memulai.`

	ErrUnknownCommand = `❌ Perintah tidak dikenal. Gunakan /help untuk daftar perintah.`
)
