package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		CodeUnknown: "Ocorreu um erro inesperado",

		// Authorization errors
		CodeUnauthorized:       "Esta operação requer autenticação",
		CodeMissingPermissions: "Você não tem as permissões necessárias para esta operação",

		// Concurrency errors
		CodePreconditionFailed: "O recurso foi modificado desde a sua última consulta",
		CodeInvalidState:       "A requisição não carrega o token de estado que esta operação exige",

		// Storage and dispatch errors
		CodeNotFound:            "O recurso solicitado não existe",
		CodeDatabaseUnavailable: "Nenhuma conexão com o banco de dados está disponível, tente novamente mais tarde",
		CodeDatabaseError:       "Ocorreu um erro no banco de dados",
		CodeDispatchUnavailable: "O serviço está sendo encerrado",

		// Submission errors
		CodeBannedFromSubmissions: "Você está banido de enviar recordes",
		CodePlayerBanned:          "Recordes não podem ser enviados para jogadores banidos",
		CodeSubmitLegacy:          "Recordes não podem ser enviados para demons na lista legada",
		CodeNon100Extended:        "Apenas recordes de 100% podem ser enviados para demons na lista estendida",
		CodeInvalidProgress:       "O progresso do recorde deve estar entre {{.Requirement}}% e 100%",
		CodeSubmissionExists:      "Um recorde equivalente (ID {{.RecordID}}, status {{.Status}}) já existe",

		// Account errors
		CodeInvalidUsername: "Nomes de usuário devem ter pelo menos 3 caracteres e não podem começar ou terminar com espaços",
		CodeInvalidPassword: "Senhas devem ter pelo menos 10 caracteres",
		CodeNameTaken:       "Este nome de usuário já está em uso",

		// Patch validation errors
		CodeInvalidName:        "Nomes não podem ser vazios nem começar ou terminar com espaços",
		CodeInvalidPosition:    "A posição do demon deve estar entre 1 e {{.Maximal}}",
		CodeInvalidRequirement: "O requisito do demon deve estar entre 0% e 100%",
		CodeInvalidVideo:       "O link de vídeo deve apontar para um host suportado",
		CodeInvalidStatus:      "Status de recorde desconhecido {{.Status}}",

		// Pagination errors
		CodeInvalidFilter: "A expressão de filtro fornecida é inválida",
		CodeInvalidLimit:  "O limite deve estar entre 1 e {{.Maximal}}",
	},
}
