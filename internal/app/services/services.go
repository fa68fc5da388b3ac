package services

// Services defined in this package:
// - ExamService: lists exams of a semester and serves exam PDFs
// - SolutionService: lists solutions of a semester and serves solution PDFs
// - UploadService: stores an exam and its optional solution atomically
// - AuthService: verifies credentials and manages login sessions
